// Package query implements the catalog's read/write protocol: a request is a
// list of named operations, each with arguments and the output fields the
// caller wants back.
package query

// Operation is one named call inside a request. Nested output fields are
// written with a dot, e.g. "brand.name".
type Operation struct {
	Name   string         `json:"name" mapstructure:"name"`
	Alias  string         `json:"alias,omitempty" mapstructure:"alias"`
	Args   map[string]any `json:"args,omitempty" mapstructure:"args"`
	Fields []string       `json:"fields,omitempty" mapstructure:"fields"`
}

// Key is the name the result is stored under in the response data.
func (o Operation) Key() string {
	if o.Alias != "" {
		return o.Alias
	}
	return o.Name
}

type Request struct {
	RequestID  string      `json:"requestId,omitempty" mapstructure:"requestId"`
	Operations []Operation `json:"operations" mapstructure:"operations"`
}

type Error struct {
	Path           []string `json:"path"`
	Code           string   `json:"code"`
	Classification string   `json:"classification"`
	Message        string   `json:"message"`
}

// Response carries every operation's result under its key. A failed
// operation has a nil value and one entry in Errors; the others are still
// returned.
type Response struct {
	RequestID string         `json:"requestId"`
	Data      map[string]any `json:"data"`
	Errors    []Error        `json:"errors,omitempty"`
}

// Map returns the response as plain maps and slices, suitable for
// structpb.NewStruct.
func (r *Response) Map() map[string]any {
	out := map[string]any{
		"requestId": r.RequestID,
		"data":      r.Data,
	}
	if len(r.Errors) > 0 {
		errs := make([]any, len(r.Errors))
		for i, e := range r.Errors {
			path := make([]any, len(e.Path))
			for j, p := range e.Path {
				path[j] = p
			}
			errs[i] = map[string]any{
				"path":           path,
				"code":           e.Code,
				"classification": e.Classification,
				"message":        e.Message,
			}
		}
		out["errors"] = errs
	}
	return out
}

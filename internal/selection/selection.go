// Package selection reduces the output fields a caller asked for to a
// normalized set the planner can reason about.
package selection

import (
	"sort"
	"strings"
)

const (
	IDField    = "id"
	MetaPrefix = "__"
)

// Set is the normalized view of one request's output shape. The zero value
// is not useful; build one with Analyze or All.
type Set struct {
	schema    *Schema
	fields    map[string]bool
	relations Relation
	nested    map[Relation][]string
	unknown   []string
}

// Analyze normalizes raw field names against schema. The identity field is
// always included, meta fields are dropped, relation markers become flags and
// names the schema does not know are collected in Unknown. Nested fields are
// written with a dot: "brand.name".
func Analyze(schema *Schema, requested []string) Set {
	s := Set{
		schema: schema,
		fields: map[string]bool{IDField: true},
		nested: make(map[Relation][]string),
	}

	for _, raw := range requested {
		name := strings.TrimSpace(raw)
		if name == "" || strings.HasPrefix(name, MetaPrefix) {
			continue
		}
		head, rest, _ := strings.Cut(name, ".")

		if rel, ok := markers[head]; ok {
			if !schema.Relations.Has(rel) {
				s.unknown = append(s.unknown, name)
				continue
			}
			s.relations |= rel
			if rest != "" && !strings.HasPrefix(rest, MetaPrefix) {
				s.nested[rel] = appendUnique(s.nested[rel], rest)
			}
			continue
		}

		if rest != "" || !schema.Knows(head) {
			s.unknown = append(s.unknown, name)
			continue
		}
		s.fields[head] = true
	}
	return s
}

// All selects every scalar field of schema and no relation.
func All(schema *Schema) Set {
	return Analyze(schema, schema.FieldNames())
}

func (s Set) Schema() *Schema { return s.schema }

// Fields returns the scalar fields in schema declaration order.
func (s Set) Fields() []string {
	out := make([]string, 0, len(s.fields))
	for _, f := range s.schema.FieldNames() {
		if s.fields[f] {
			out = append(out, f)
		}
	}
	return out
}

func (s Set) Has(field string) bool { return s.fields[field] }

func (s Set) Relations() Relation { return s.relations }

func (s Set) Wants(r Relation) bool { return s.relations.Has(r) }

// HasRelationshipFields is true if brand, category, products, children or
// parent was requested.
func (s Set) HasRelationshipFields() bool { return s.relations.Has(relationshipMask) }

// IsOnlyBasicFields is true if no relation or collection marker was
// requested.
func (s Set) IsOnlyBasicFields() bool { return !s.relations.Has(relationshipMask | collectionMask) }

// Columns returns the storage columns behind the scalar fields, identity
// first, without duplicates.
func (s Set) Columns() []string {
	return s.schema.columnsFor(s.Fields())
}

// Nested returns the sub-selection of a relation in the related schema. A
// bare marker ("brand") selects every scalar field of the related entity.
func (s Set) Nested(r Relation) Set {
	related := Related(r)
	if related == nil {
		return Set{}
	}
	names := s.nested[r]
	if len(names) == 0 {
		return All(related)
	}
	return Analyze(related, names)
}

// Unknown returns the names that were ignored, sorted.
func (s Set) Unknown() []string {
	out := append([]string(nil), s.unknown...)
	sort.Strings(out)
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

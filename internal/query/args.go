package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/planner"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Args are the decoded arguments of one operation. Values arrive as JSON or
// structpb scalars, so numbers may be float64 or strings.
type Args map[string]any

func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a Args) Int64(key string) (int64, error) {
	if !a.Has(key) {
		return 0, required(key)
	}
	n, err := cast.ToInt64E(a[key])
	if err != nil {
		return 0, apperror.Validation("argument '%s' must be an integer", key)
	}
	return n, nil
}

// OptionalInt64 returns nil when the argument is absent or null.
func (a Args) OptionalInt64(key string) (*int64, error) {
	if !a.Has(key) {
		return nil, nil
	}
	n, err := a.Int64(key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (a Args) Int(key string, def int) (int, error) {
	if !a.Has(key) {
		return def, nil
	}
	n, err := cast.ToIntE(a[key])
	if err != nil {
		return 0, apperror.Validation("argument '%s' must be an integer", key)
	}
	return n, nil
}

func (a Args) String(key string) (string, error) {
	if !a.Has(key) {
		return "", required(key)
	}
	s, err := cast.ToStringE(a[key])
	if err != nil {
		return "", apperror.Validation("argument '%s' must be a string", key)
	}
	return s, nil
}

func (a Args) Bool(key string) (bool, error) {
	if !a.Has(key) {
		return false, required(key)
	}
	b, err := cast.ToBoolE(a[key])
	if err != nil {
		return false, apperror.Validation("argument '%s' must be a boolean", key)
	}
	return b, nil
}

func (a Args) Decimal(key string) (decimal.Decimal, error) {
	if !a.Has(key) {
		return decimal.Zero, required(key)
	}
	d, err := toDecimal(a[key])
	if err != nil {
		return decimal.Zero, apperror.Validation("argument '%s' must be a number", key)
	}
	return d, nil
}

func (a Args) Int64s(key string) ([]int64, error) {
	if !a.Has(key) {
		return nil, required(key)
	}
	items, err := cast.ToSliceE(a[key])
	if err != nil {
		return nil, apperror.Validation("argument '%s' must be a list of integers", key)
	}
	out := make([]int64, 0, len(items))
	for _, it := range items {
		n, err := cast.ToInt64E(it)
		if err != nil {
			return nil, apperror.Validation("argument '%s' must be a list of integers", key)
		}
		out = append(out, n)
	}
	return out, nil
}

// Page reads the optional "pageIndex" and "pageSize" arguments. Without
// either the result is nil and the whole result set is returned.
func (a Args) Page(defaultSize, maxSize int) (*planner.Page, error) {
	if !a.Has("pageIndex") && !a.Has("pageSize") {
		return nil, nil
	}
	index, err := a.Int("pageIndex", 0)
	if err != nil {
		return nil, err
	}
	size, err := a.Int("pageSize", defaultSize)
	if err != nil {
		return nil, err
	}
	if size > maxSize {
		return nil, apperror.Validation("page size must not exceed %d, got %d", maxSize, size)
	}
	return planner.NewPage(index, size)
}

// Decode copies the arguments under key into out, a pointer to a struct
// with mapstructure tags, and validates it. An empty key decodes the whole
// argument map.
func (a Args) Decode(key string, out any) error {
	var input any = map[string]any(a)
	if key != "" {
		if !a.Has(key) {
			return required(key)
		}
		input = a[key]
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decimalHook,
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return apperror.Internal(err, "build decoder")
	}
	if err := dec.Decode(input); err != nil {
		return apperror.Validation("invalid argument '%s': %s", argName(key), err.Error())
	}
	return Validate(out)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType || data == nil {
		return data, nil
	}
	return toDecimal(data)
}

func toDecimal(v any) (decimal.Decimal, error) {
	if d, ok := v.(decimal.Decimal); ok {
		return d, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks the validate tags of a struct and reports every failing
// field in one ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Internal(err, "validate input")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldMessage(fe)
	}
	return apperror.Validation("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

func required(key string) error {
	return apperror.Validation("argument '%s' is required", key)
}

func argName(key string) string {
	if key == "" {
		return "args"
	}
	return key
}

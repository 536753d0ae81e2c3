// Package codec describes payload schemas. A Codec checks domain values,
// encodes them to JSON wire values (nil, bool, float64, string, []any,
// map[string]any) and decodes wire values back, reporting structured Errors.
package codec

import (
	"errors"
	"fmt"
	"strings"
)

type Codec interface {
	Name() string
	// Is reports whether v is a valid domain value.
	Is(v any) bool
	// Encode converts a valid domain value to its wire form.
	Encode(v any) (any, error)
	// Decode converts a wire value to a domain value. Failures are Errors.
	Decode(wire any) (any, error)
}

// Issue is a single decode diagnostic.
type Issue struct {
	Path     []string
	Expected string
	Value    any
	Message  string
}

func (i Issue) PathString() string {
	if len(i.Path) == 0 {
		return "$"
	}
	var sb strings.Builder
	sb.WriteByte('$')
	for _, p := range i.Path {
		if strings.HasPrefix(p, "[") {
			sb.WriteString(p)
			continue
		}
		sb.WriteByte('.')
		sb.WriteString(p)
	}
	return sb.String()
}

func (i Issue) String() string {
	if i.Message != "" {
		return fmt.Sprintf("%s: %s", i.PathString(), i.Message)
	}
	return fmt.Sprintf("%s: invalid value %s supplied, expected %s", i.PathString(), describe(i.Value), i.Expected)
}

// Errors is the structured failure returned by Decode.
type Errors []Issue

func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "no errors"
	case 1:
		return e[0].String()
	}
	parts := make([]string, len(e))
	for i, issue := range e {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%d errors: %s", len(e), strings.Join(parts, "; "))
}

func (e Errors) prefix(seg string) Errors {
	for i := range e {
		e[i].Path = append([]string{seg}, e[i].Path...)
	}
	return e
}

// AsErrors extracts diagnostics from err. Foreign errors become a single issue.
func AsErrors(err error) Errors {
	if err == nil {
		return nil
	}
	var errs Errors
	if errors.As(err, &errs) {
		return errs
	}
	return Errors{{Message: err.Error()}}
}

func fail(expected string, v any) Errors {
	return Errors{{Expected: expected, Value: v}}
}

type explainer interface {
	explain(v any) Errors
}

// Validate returns nil when c.Is(v) holds and the diagnostics explaining the
// rejection otherwise.
func Validate(c Codec, v any) error {
	if c.Is(v) {
		return nil
	}
	if ex, ok := c.(explainer); ok {
		if errs := ex.explain(v); len(errs) != 0 {
			return errs
		}
	}
	// wire shaped domain values get per field diagnostics from Decode
	if _, err := c.Decode(v); err != nil {
		return AsErrors(err)
	}
	return fail(c.Name(), v)
}

// EncodeInvalidError is returned by Encode for values that fail Is.
type EncodeInvalidError struct {
	Codec string
	Value any
}

func (e *EncodeInvalidError) Error() string {
	return fmt.Sprintf("cannot encode %s as %s", describe(e.Value), e.Codec)
}

func decodeChild(c Codec, wire any, seg string) (any, Errors) {
	v, err := c.Decode(wire)
	if err == nil {
		return v, nil
	}
	errs := append(Errors(nil), AsErrors(err)...)
	if seg != "" {
		errs = errs.prefix(seg)
	}
	return nil, errs
}

func result(v any, errs Errors) (any, error) {
	if len(errs) != 0 {
		return nil, errs
	}
	return v, nil
}

func describe(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%v", v)
	}
}

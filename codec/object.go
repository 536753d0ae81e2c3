package codec

import (
	"strings"
)

// Props maps object keys to their codecs.
type Props map[string]Codec

type propser interface {
	props() (Props, bool)
}

func propsOf(c Codec) (Props, bool) {
	p, ok := c.(propser)
	if !ok {
		return nil, false
	}
	return p.props()
}

func propsName(props Props, optional bool) string {
	if len(props) == 0 {
		return "{}"
	}
	sep := ": "
	if optional {
		sep = "?: "
	}
	parts := make([]string, 0, len(props))
	for _, k := range sortedKeys(props) {
		parts = append(parts, k+sep+props[k].Name())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

type object struct {
	fields   Props
	optional bool
	name     string
}

// Type is a loose object codec: declared keys are checked, other keys pass through untouched.
func Type(props Props) Codec {
	return object{fields: props, name: propsName(props, false)}
}

// Partial is like Type but every declared key may be absent.
func Partial(props Props) Codec {
	return object{fields: props, optional: true, name: propsName(props, true)}
}

func (c object) Name() string { return c.name }

func (c object) props() (Props, bool) { return c.fields, true }

func (c object) Is(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for k, field := range c.fields {
		fv, present := m[k]
		if !present && c.optional {
			continue
		}
		if !field.Is(fv) {
			return false
		}
	}
	return true
}

func (c object) Encode(v any) (any, error) {
	if !c.Is(v) {
		return nil, &EncodeInvalidError{Codec: c.name, Value: v}
	}
	m := v.(map[string]any)
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = e
	}
	for k, field := range c.fields {
		fv, present := m[k]
		if !present {
			continue
		}
		w, err := field.Encode(fv)
		if err != nil {
			return nil, err
		}
		out[k] = w
	}
	return out, nil
}

func (c object) Decode(wire any) (any, error) {
	m, ok := wire.(map[string]any)
	if !ok {
		return nil, fail(c.name, wire)
	}
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = e
	}

	var errs Errors
	for _, k := range sortedKeys(c.fields) {
		fv, present := m[k]
		if !present && c.optional {
			continue
		}
		v, fieldErrs := decodeChild(c.fields[k], fv, k)
		if fieldErrs != nil {
			errs = append(errs, fieldErrs...)
			continue
		}
		if present || v != nil {
			out[k] = v
		}
	}
	return result(out, errs)
}

type exact struct {
	Codec
	fields Props
}

// Exact makes an object codec strict: Is rejects undeclared keys, Encode and
// Decode strip them. base must be built from Type, Partial or Intersection.
func Exact(base Codec) Codec {
	fields, ok := propsOf(base)
	if !ok {
		panic("assertion error: exact codec needs an object codec, got " + base.Name())
	}
	return exact{base, fields}
}

func (c exact) Name() string { return "Exact<" + c.Codec.Name() + ">" }

func (c exact) props() (Props, bool) { return c.fields, true }

func (c exact) Is(v any) bool {
	if !c.Codec.Is(v) {
		return false
	}
	for k := range v.(map[string]any) {
		if _, declared := c.fields[k]; !declared {
			return false
		}
	}
	return true
}

func (c exact) Encode(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &EncodeInvalidError{Codec: c.Name(), Value: v}
	}
	w, err := c.Codec.Encode(c.strip(m))
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (c exact) Decode(wire any) (any, error) {
	v, err := c.Codec.Decode(wire)
	if err != nil {
		return nil, err
	}
	return c.strip(v.(map[string]any)), nil
}

func (c exact) strip(m map[string]any) map[string]any {
	out := make(map[string]any, len(c.fields))
	for k, e := range m {
		if _, declared := c.fields[k]; declared {
			out[k] = e
		}
	}
	return out
}

type intersection struct {
	members []Codec
}

// Intersection requires every member to hold. Object results are merged.
func Intersection(members ...Codec) Codec {
	if len(members) < 2 {
		panic("assertion error: intersection needs at least two members")
	}
	return intersection{members}
}

func (c intersection) Name() string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name()
	}
	return "(" + strings.Join(names, " & ") + ")"
}

func (c intersection) props() (Props, bool) {
	merged := Props{}
	for _, m := range c.members {
		p, ok := propsOf(m)
		if !ok {
			return nil, false
		}
		for k, field := range p {
			merged[k] = field
		}
	}
	return merged, true
}

func (c intersection) Is(v any) bool {
	for _, m := range c.members {
		if !m.Is(v) {
			return false
		}
	}
	return true
}

func (c intersection) Encode(v any) (any, error) {
	if !c.Is(v) {
		return nil, &EncodeInvalidError{Codec: c.Name(), Value: v}
	}
	outs := make([]any, len(c.members))
	for i, m := range c.members {
		w, err := m.Encode(v)
		if err != nil {
			return nil, err
		}
		outs[i] = w
	}
	return merge(v, outs), nil
}

func (c intersection) Decode(wire any) (any, error) {
	var errs Errors
	outs := make([]any, len(c.members))
	for i, m := range c.members {
		v, memberErrs := decodeChild(m, wire, "")
		errs = append(errs, memberErrs...)
		outs[i] = v
	}
	if len(errs) != 0 {
		return nil, errs
	}
	return merge(wire, outs), nil
}

// merge overlays object results on a copy of the input. Non-object results
// resolve to the last member's value.
func merge(in any, outs []any) any {
	src, ok := in.(map[string]any)
	if !ok {
		return outs[len(outs)-1]
	}
	merged := make(map[string]any, len(src))
	for k, e := range src {
		merged[k] = e
	}
	for _, out := range outs {
		m, ok := out.(map[string]any)
		if !ok {
			return outs[len(outs)-1]
		}
		for k, e := range m {
			merged[k] = e
		}
	}
	return merged
}

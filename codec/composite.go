package codec

import (
	"sort"
	"strconv"
	"strings"
)

type array struct{ elem Codec }

func Array(elem Codec) Codec { return array{elem} }

func (c array) Name() string { return "Array<" + c.elem.Name() + ">" }

func (c array) Is(v any) bool {
	s, ok := v.([]any)
	if !ok {
		return false
	}
	for _, e := range s {
		if !c.elem.Is(e) {
			return false
		}
	}
	return true
}

func (c array) Encode(v any) (any, error) {
	if !c.Is(v) {
		return nil, &EncodeInvalidError{Codec: c.Name(), Value: v}
	}
	s := v.([]any)
	out := make([]any, len(s))
	for i, e := range s {
		w, err := c.elem.Encode(e)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (c array) Decode(wire any) (any, error) {
	s, ok := wire.([]any)
	if !ok {
		return nil, fail(c.Name(), wire)
	}
	var errs Errors
	out := make([]any, len(s))
	for i, e := range s {
		v, elemErrs := decodeChild(c.elem, e, "["+strconv.Itoa(i)+"]")
		errs = append(errs, elemErrs...)
		out[i] = v
	}
	return result(out, errs)
}

type record struct{ value Codec }

// Record accepts objects with arbitrary string keys whose values satisfy value.
func Record(value Codec) Codec { return record{value} }

func (c record) Name() string { return "{ [K in string]: " + c.value.Name() + " }" }

func (c record) Is(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, e := range m {
		if !c.value.Is(e) {
			return false
		}
	}
	return true
}

func (c record) Encode(v any) (any, error) {
	if !c.Is(v) {
		return nil, &EncodeInvalidError{Codec: c.Name(), Value: v}
	}
	m := v.(map[string]any)
	out := make(map[string]any, len(m))
	for k, e := range m {
		w, err := c.value.Encode(e)
		if err != nil {
			return nil, err
		}
		out[k] = w
	}
	return out, nil
}

func (c record) Decode(wire any) (any, error) {
	m, ok := wire.(map[string]any)
	if !ok {
		return nil, fail(c.Name(), wire)
	}
	var errs Errors
	out := make(map[string]any, len(m))
	for _, k := range sortedKeys(m) {
		v, valueErrs := decodeChild(c.value, m[k], k)
		errs = append(errs, valueErrs...)
		out[k] = v
	}
	return result(out, errs)
}

type union struct{ members []Codec }

// Union accepts a value matching any member. The first match wins.
func Union(members ...Codec) Codec {
	if len(members) < 2 {
		panic("assertion error: union needs at least two members")
	}
	return union{members}
}

func (c union) Name() string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name()
	}
	return "(" + strings.Join(names, " | ") + ")"
}

func (c union) Is(v any) bool {
	for _, m := range c.members {
		if m.Is(v) {
			return true
		}
	}
	return false
}

func (c union) Encode(v any) (any, error) {
	for _, m := range c.members {
		if m.Is(v) {
			return m.Encode(v)
		}
	}
	return nil, &EncodeInvalidError{Codec: c.Name(), Value: v}
}

func (c union) Decode(wire any) (any, error) {
	var errs Errors
	for _, m := range c.members {
		v, memberErrs := decodeChild(m, wire, "")
		if memberErrs == nil {
			return v, nil
		}
		errs = append(errs, memberErrs...)
	}
	return nil, append(fail(c.Name(), wire), errs...)
}

type refinement struct {
	Codec
	pred func(any) bool
	name string
}

// Refinement narrows base with a predicate over the decoded value.
func Refinement(base Codec, pred func(any) bool, name string) Codec {
	return refinement{base, pred, name}
}

func (c refinement) Name() string { return c.name }

func (c refinement) Is(v any) bool { return c.Codec.Is(v) && c.pred(v) }

func (c refinement) Encode(v any) (any, error) {
	if !c.Is(v) {
		return nil, &EncodeInvalidError{Codec: c.name, Value: v}
	}
	return c.Codec.Encode(v)
}

func (c refinement) Decode(wire any) (any, error) {
	v, err := c.Codec.Decode(wire)
	if err != nil {
		return nil, err
	}
	if !c.pred(v) {
		return nil, fail(c.name, wire)
	}
	return v, nil
}

func (c refinement) props() (Props, bool) { return propsOf(c.Codec) }

type nullable struct{ Codec }

// Nullable accepts null in addition to base.
func Nullable(base Codec) Codec { return nullable{base} }

func (c nullable) Name() string { return c.Codec.Name() + " | null" }

func (c nullable) Is(v any) bool { return v == nil || c.Codec.Is(v) }

func (c nullable) Encode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return c.Codec.Encode(v)
}

func (c nullable) Decode(wire any) (any, error) {
	if wire == nil {
		return nil, nil
	}
	return c.Codec.Decode(wire)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

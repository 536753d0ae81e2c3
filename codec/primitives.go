package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

type primitive struct {
	name      string
	is        func(any) bool
	normalize func(any) any // maps an accepted value to its canonical domain form
}

func (p primitive) Name() string  { return p.name }
func (p primitive) Is(v any) bool { return p.is(v) }

func (p primitive) canonical(v any) any {
	if p.normalize == nil {
		return v
	}
	return p.normalize(v)
}

func (p primitive) Encode(v any) (any, error) {
	if !p.is(v) {
		return nil, &EncodeInvalidError{Codec: p.name, Value: v}
	}
	return p.canonical(v), nil
}

func (p primitive) Decode(wire any) (any, error) {
	if !p.is(wire) {
		return nil, fail(p.name, wire)
	}
	return p.canonical(wire), nil
}

var stringCodec = primitive{name: "string", is: func(v any) bool {
	_, ok := v.(string)
	return ok
}}

var boolCodec = primitive{name: "boolean", is: func(v any) bool {
	_, ok := v.(bool)
	return ok
}}

var nullCodec = primitive{name: "null", is: func(v any) bool { return v == nil }}

var anyCodec = primitive{name: "any", is: func(any) bool { return true }}

var number = primitive{name: "number", is: isNumber, normalize: asFloat}

var integer = primitive{name: "Int", is: isInt, normalize: asInt}

func isNumber(v any) bool {
	f, ok := toFloat(v)
	return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isInt(v any) bool {
	f, ok := toFloat(v)
	return ok && f == math.Trunc(f) && math.Abs(f) <= 1<<53
}

func asFloat(v any) any {
	f, _ := toFloat(v)
	return f
}

func asInt(v any) any {
	f, _ := toFloat(v)
	return int64(f)
}

func String() Codec { return stringCodec }
func Bool() Codec   { return boolCodec }
func Null() Codec   { return nullCodec }
func Any() Codec    { return anyCodec }
func Number() Codec { return number }
func Int() Codec    { return integer }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	}
	return 0, false
}

type literal struct {
	value any
	name  string
}

// Literal accepts exactly one string, number, boolean or null value.
func Literal(v any) Codec {
	if f, ok := toFloat(v); ok {
		v = f
	}
	switch v.(type) {
	case nil, string, float64, bool:
	default:
		panic(fmt.Sprintf("assertion error: unsupported literal %T", v))
	}
	return literal{value: v, name: describe(v)}
}

func (l literal) Name() string { return l.name }

func (l literal) Is(v any) bool {
	if f, ok := toFloat(v); ok {
		v = f
	}
	return v == l.value
}

func (l literal) Encode(v any) (any, error) {
	if !l.Is(v) {
		return nil, &EncodeInvalidError{Codec: l.name, Value: v}
	}
	return l.value, nil
}

func (l literal) Decode(wire any) (any, error) {
	if !l.Is(wire) {
		return nil, fail(l.name, wire)
	}
	return l.value, nil
}

// Package jsonwire converts JSON text to and from wire values: nil, bool,
// float64, string, []any and map[string]any. Wire values are what codecs
// validate and produce.
package jsonwire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

var ErrUnexpectedEnd = errors.New("unexpected end of JSON input")

// UnsupportedValueError is returned by Marshal for values that have no JSON form.
type UnsupportedValueError struct {
	Value any
	Path  string
}

func (e *UnsupportedValueError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unsupported value %v (%T)", e.Value, e.Value)
	}
	return fmt.Sprintf("unsupported value %v (%T) at %s", e.Value, e.Value, e.Path)
}

// Unmarshal parses a single JSON document. Trailing non-space bytes are an error.
func Unmarshal(b []byte) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrUnexpectedEnd
	}

	// jlexer accepts leading zeros, "1." and raw control characters in strings
	if !json.Valid(b) {
		return nil, syntaxError(b)
	}

	in := jlexer.Lexer{Data: b}
	v := in.Interface()
	in.Consumed()
	if err := in.Error(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrUnexpectedEnd
		}
		return nil, err
	}
	return v, nil
}

func syntaxError(b []byte) error {
	err := json.Unmarshal(b, new(json.RawMessage))
	var se *json.SyntaxError
	switch {
	case err == nil:
		return errors.New("invalid JSON input")
	case errors.As(err, &se) && se.Offset >= int64(len(b)):
		return ErrUnexpectedEnd
	}
	return err
}

// Marshal writes v as compact JSON. Object keys are sorted so the output is stable.
func Marshal(v any) ([]byte, error) {
	return MarshalAppend(nil, v)
}

func MarshalAppend(b []byte, v any) ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	if err := write(&w, v, "$"); err != nil {
		return b, err
	}
	out, err := w.BuildBytes()
	if err != nil {
		return b, err
	}
	return append(b, out...), nil
}

func write(w *jwriter.Writer, v any, path string) error {
	switch v := v.(type) {
	case nil:
		w.RawString("null")
	case bool:
		w.Bool(v)
	case string:
		w.String(v)
	case float64:
		return writeFloat(w, v, path)
	case float32:
		return writeFloat(w, float64(v), path)
	case int:
		w.Int64(int64(v))
	case int8:
		w.Int64(int64(v))
	case int16:
		w.Int64(int64(v))
	case int32:
		w.Int64(int64(v))
	case int64:
		w.Int64(v)
	case uint:
		w.Uint64(uint64(v))
	case uint8:
		w.Uint64(uint64(v))
	case uint16:
		w.Uint64(uint64(v))
	case uint32:
		w.Uint64(uint64(v))
	case uint64:
		w.Uint64(v)
	case json.Number:
		if _, err := strconv.ParseFloat(string(v), 64); err != nil {
			return &UnsupportedValueError{Value: v, Path: path}
		}
		w.RawString(string(v))
	case json.RawMessage:
		if !json.Valid(v) {
			return &UnsupportedValueError{Value: string(v), Path: path}
		}
		w.Raw(v, nil)
	case []any:
		w.RawByte('[')
		for i, e := range v {
			if i > 0 {
				w.RawByte(',')
			}
			if err := write(w, e, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		w.RawByte(']')
	case []string:
		w.RawByte('[')
		for i, e := range v {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(e)
		}
		w.RawByte(']')
	case map[string]any:
		w.RawByte('{')
		for i, k := range sortedKeys(v) {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(k)
			w.RawByte(':')
			if err := write(w, v[k], path+"."+k); err != nil {
				return err
			}
		}
		w.RawByte('}')
	case map[string]string:
		w.RawByte('{')
		for i, k := range sortedKeys(v) {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(k)
			w.RawByte(':')
			w.String(v[k])
		}
		w.RawByte('}')
	default:
		return &UnsupportedValueError{Value: v, Path: path}
	}
	return nil
}

func writeFloat(w *jwriter.Writer, f float64, path string) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &UnsupportedValueError{Value: f, Path: path}
	}
	w.Float64(f)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

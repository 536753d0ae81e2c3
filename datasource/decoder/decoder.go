// Package decoder parses request lines of the form
//
//	{"tag":"get-task","method":"GET","path":"/tasks/1","headers":{"X-Trace":["a"]},"body":{...}}
//
// Tags, methods and header names are interned, so a long requests file does
// not keep a copy of every repeated string.
package decoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mailru/easyjson/jlexer"

	"github.com/ozontech/typedhttp/utils/lru"
)

const (
	namesLRUSize  = 1 << 10
	valuesLRUSize = 1 << 16
	pathsLRUSize  = 1 << 12
)

var (
	ErrNoPath      = errors.New("request line has no path")
	ErrInvalidJSON = errors.New("request line is not valid JSON")
)

type Decoder struct {
	tags    *lru.LRU[string]
	methods *lru.LRU[string]
	paths   *lru.LRU[string]
	names   *lru.LRU[string]
	values  *lru.LRU[string]
}

func NewDecoder() *Decoder {
	return &Decoder{
		tags:    lru.New[string](namesLRUSize),
		methods: lru.New[string](namesLRUSize),
		paths:   lru.New[string](pathsLRUSize),
		names:   lru.New[string](namesLRUSize),
		values:  lru.New[string](valuesLRUSize),
	}
}

func intern(l *lru.LRU[string], b []byte) string {
	s, _ := l.GetOrAddBytes(b, func(k string) (string, error) { return k, nil })
	return s
}

func canonicalName(k string) (string, error) {
	return http.CanonicalHeaderKey(k), nil
}

// Unmarshal fills d from one line. d is reset first; its header slice is reused.
func (decoder *Decoder) Unmarshal(d *Data, b []byte) error {
	d.Reset()
	if !json.Valid(b) {
		return ErrInvalidJSON
	}

	in := jlexer.Lexer{Data: b}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeString()
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}

		switch key {
		case "tag":
			d.Tag = intern(decoder.tags, in.UnsafeBytes())
		case "method":
			d.Method = intern(decoder.methods, in.UnsafeBytes())
		case "path":
			d.Path = intern(decoder.paths, in.UnsafeBytes())
		case "headers":
			d.Header = decoder.headers(&in, d.Header)
		case "body":
			d.Body = in.Interface()
			d.HasBody = true
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	in.Consumed()

	if err := in.Error(); err != nil {
		return fmt.Errorf("request line: %w", err)
	}
	if d.Method == "" {
		d.Method = http.MethodGet
	}
	if d.Path == "" {
		return ErrNoPath
	}
	return nil
}

func (decoder *Decoder) headers(in *jlexer.Lexer, buf []Header) []Header {
	in.Delim('{')
	for !in.IsDelim('}') {
		name, _ := decoder.names.GetOrAddBytes(in.UnsafeBytes(), canonicalName)
		in.WantColon()

		in.Delim('[')
		for !in.IsDelim(']') {
			buf = append(buf, Header{Name: name, Value: intern(decoder.values, in.UnsafeBytes())})
			in.WantComma()
		}
		in.Delim(']')

		in.WantComma()
	}
	in.Delim('}')
	return buf
}

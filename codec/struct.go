package codec

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ozontech/typedhttp/jsonwire"
)

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
})

type structCodec[T any] struct {
	name     string
	isStruct bool
}

// Struct maps Go values of type T through their encoding/json form and checks
// `validate` struct tags. Undeclared wire keys are dropped on decode.
func Struct[T any]() Codec {
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return structCodec[T]{name: name, isStruct: t.Kind() == reflect.Struct}
}

func (c structCodec[T]) Name() string { return c.name }

func (c structCodec[T]) value(v any) (T, bool) {
	switch v := v.(type) {
	case T:
		return v, true
	case *T:
		if v != nil {
			return *v, true
		}
	}
	var zero T
	return zero, false
}

func (c structCodec[T]) Is(v any) bool {
	t, ok := c.value(v)
	if !ok {
		return false
	}
	return c.check(t) == nil
}

func (c structCodec[T]) explain(v any) Errors {
	t, ok := c.value(v)
	if !ok {
		return fail(c.name, v)
	}
	return c.check(t)
}

func (c structCodec[T]) check(t T) Errors {
	if !c.isStruct {
		return nil
	}
	err := validate().Struct(t)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Expected: c.name, Message: err.Error()}}
	}
	errs := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := strings.Split(fe.Namespace(), ".")
		errs = append(errs, Issue{
			Path:     path[1:],
			Expected: fe.Tag(),
			Value:    fe.Value(),
			Message:  fe.Error(),
		})
	}
	return errs
}

func (c structCodec[T]) Encode(v any) (any, error) {
	t, ok := c.value(v)
	if !ok {
		return nil, &EncodeInvalidError{Codec: c.name, Value: v}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return jsonwire.Unmarshal(b)
}

func (c structCodec[T]) Decode(wire any) (any, error) {
	b, err := jsonwire.Marshal(wire)
	if err != nil {
		return nil, Errors{{Expected: c.name, Value: wire, Message: err.Error()}}
	}
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		issue := Issue{Expected: c.name, Value: wire, Message: err.Error()}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field != "" {
				issue.Path = strings.Split(typeErr.Field, ".")
			}
			issue.Expected = typeErr.Type.String()
			issue.Value = typeErr.Value
			issue.Message = ""
		}
		return nil, Errors{issue}
	}
	if errs := c.check(t); errs != nil {
		return nil, errs
	}
	return t, nil
}

package service

import (
	"context"
	"fmt"
	"net/http"
)

// Result is a Response with a statically typed payload.
type Result[O any] struct {
	StatusCode int
	Header     http.Header
	Payload    O
}

// Bind returns a typed wrapper around the named operation. A is the argument
// passed to the operation, O the type the output codec decodes to.
func Bind[A, O any](s *Service, name string) (func(context.Context, A) (*Result[O], error), error) {
	fn, ok := s.Operation(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownOperation, name)
	}
	return func(ctx context.Context, arg A) (*Result[O], error) {
		resp, err := fn(ctx, arg)
		if err != nil {
			return nil, err
		}
		res := &Result[O]{StatusCode: resp.StatusCode, Header: resp.Header}
		if resp.Payload == nil {
			return res, nil
		}
		payload, ok := resp.Payload.(O)
		if !ok {
			return nil, fmt.Errorf("operation %q: payload is %T, not %T", name, resp.Payload, res.Payload)
		}
		res.Payload = payload
		return res, nil
	}, nil
}

// Package service turns a Manifest into callable operations backed by
// client.Client.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ozontech/typedhttp/client"
	"github.com/ozontech/typedhttp/consts"
)

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrInvalidArguments = fmt.Errorf("%w: invalid operation arguments", client.ErrConfiguration)
)

// OperationFunc calls one declared operation. arg is Args, or whatever the
// operation's MapArguments accepts.
type OperationFunc func(ctx context.Context, arg any) (*client.Response, error)

type Service struct {
	ops   map[string]OperationFunc
	names []string
}

// New builds the operations of m. opts configure the underlying client, the
// base URL and the JSON headers come from the manifest.
func New(m Manifest, opts ...client.Option) (*Service, error) {
	base, err := client.New(append([]client.Option{
		client.WithBaseURL(m.BaseURL),
		client.WithHeader(consts.HeaderUserAgent, consts.DefaultUserAgent),
	}, opts...)...)
	if err != nil {
		return nil, err
	}

	s := &Service{ops: make(map[string]OperationFunc, len(m.Operations))}
	for name, op := range m.Operations {
		fn, err := newOperation(base, name, op)
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", name, err)
		}
		s.ops[name] = fn
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)
	return s, nil
}

func newOperation(base *client.Client, name string, op Operation) (OperationFunc, error) {
	if op.Method == "" {
		return nil, fmt.Errorf("%w: method is required", client.ErrConfiguration)
	}
	path, err := parsePath(op.PathTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", client.ErrConfiguration, err)
	}
	c, err := base.With(
		client.WithRequestCodec(op.InputCodec),
		client.WithResponseCodec(op.OutputCodec),
	)
	if err != nil {
		return nil, err
	}
	mapArgs := op.MapArguments
	if mapArgs == nil {
		mapArgs = asArgs
	}

	return func(ctx context.Context, arg any) (*client.Response, error) {
		args, err := mapArgs(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
		}
		return c.Do(ctx, op.Method, path.expand(args.Params), client.Tag(name), client.Payload(args.Data))
	}, nil
}

func asArgs(arg any) (Args, error) {
	switch a := arg.(type) {
	case Args:
		return a, nil
	case *Args:
		if a != nil {
			return *a, nil
		}
	case nil:
		return Args{}, nil
	}
	return Args{}, fmt.Errorf("expected service.Args, got %T", arg)
}

// Operation returns the function of a declared operation.
func (s *Service) Operation(name string) (OperationFunc, bool) {
	fn, ok := s.ops[name]
	return fn, ok
}

// Call invokes the named operation.
func (s *Service) Call(ctx context.Context, name string, arg any) (*client.Response, error) {
	fn, ok := s.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownOperation, name)
	}
	return fn(ctx, arg)
}

// Names lists the declared operations in lexical order.
func (s *Service) Names() []string {
	return append([]string(nil), s.names...)
}

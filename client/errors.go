package client

import (
	"errors"
	"fmt"

	"github.com/ozontech/typedhttp/codec"
)

var (
	ErrInvalidPayload      = errors.New("invalid request payload")
	ErrConfiguration       = errors.New("configuration error")
	ErrUnsupportedProtocol = fmt.Errorf("%w: unsupported protocol", ErrConfiguration)
)

// EncodeError is a request payload that passed validation but could not be
// turned into JSON.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "error encoding request payload as JSON: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error { return e.Err }

// ResponseJSONError is a response body that is not JSON text.
type ResponseJSONError struct {
	Err error
}

func (e *ResponseJSONError) Error() string {
	return "error parsing response payload as JSON: " + e.Err.Error()
}

func (e *ResponseJSONError) Unwrap() error { return e.Err }

// ResponseDecodeError is a JSON response rejected by the response codec.
type ResponseDecodeError struct {
	Issues codec.Errors
}

func (e *ResponseDecodeError) Error() string {
	return "error decoding response payload: " + e.Issues.Error()
}

func (e *ResponseDecodeError) Unwrap() error { return e.Issues }

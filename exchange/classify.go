package exchange

import (
	"context"
	"errors"
	"io"
	"syscall"
)

// Kind is a coarse classification of transport errors.
type Kind int

const (
	KindNone Kind = iota
	KindOther
	KindConnReset
	KindHangUp
	KindRefused
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConnReset:
		return "ECONNRESET"
	case KindHangUp:
		return "socket hang up"
	case KindRefused:
		return "ECONNREFUSED"
	case KindCanceled:
		return "canceled"
	}
	return "other"
}

// Classify inspects a transport error returned by an Exchange stage.
// The peer closing the socket without a response is a hang up, a reset or a
// broken pipe is a connection reset.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return KindConnReset
	case errors.Is(err, syscall.ECONNREFUSED):
		return KindRefused
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return KindHangUp
	}
	return KindOther
}

// Package tracing is the span capability the client reports to. A nil
// tracer is never passed around: Noop stands in for it.
package tracing

import "context"

// Tag keys set by the client.
const (
	TagSpanKind         = "span.kind"
	TagPeerAddress      = "peer.address"
	TagError            = "error"
	TagSamplingPriority = "sampling.priority"
	TagHTTPMethod       = "http.method"
	TagHTTPURL          = "http.url"
	TagHTTPStatusCode   = "http.status_code"

	SpanKindClient = "client"
)

type Tags map[string]any

type Tracer interface {
	// StartSpan opens a span. parent may be nil, then the tracer looks for a
	// parent in ctx.
	StartSpan(ctx context.Context, name string, parent Span, tags Tags) Span
}

type Span interface {
	SetTags(tags Tags)
	Finish()
	// Context returns ctx carrying this span, for tracers that propagate
	// through context.
	Context(ctx context.Context) context.Context
}

type spanKey struct{}

// ContextWithSpan stores span as the parent for spans started under ctx.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	return context.WithValue(ctx, spanKey{}, span)
}

// SpanFromContext returns the span stored by ContextWithSpan, or nil.
func SpanFromContext(ctx context.Context) Span {
	span, _ := ctx.Value(spanKey{}).(Span)
	return span
}

type noop struct{}

// Noop discards every span.
var Noop Tracer = noop{}

func (noop) StartSpan(context.Context, string, Span, Tags) Span { return noopSpan{} }

type noopSpan struct{}

func (noopSpan) SetTags(Tags)                                {}
func (noopSpan) Finish()                                     {}
func (noopSpan) Context(ctx context.Context) context.Context { return ctx }

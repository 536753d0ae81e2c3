// Package oteltracing adapts an OpenTelemetry tracer to tracing.Tracer.
package oteltracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ozontech/typedhttp/tracing"
)

const instrumentationName = "github.com/ozontech/typedhttp"

type Tracer struct {
	tracer trace.Tracer
}

func New(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(instrumentationName)}
}

func (t *Tracer) StartSpan(ctx context.Context, name string, parent tracing.Span, tags tracing.Tags) tracing.Span {
	if parent != nil {
		ctx = parent.Context(ctx)
	}
	opts := []trace.SpanStartOption{trace.WithAttributes(attributes(tags)...)}
	if tags[tracing.TagSpanKind] == tracing.SpanKindClient {
		opts = append(opts, trace.WithSpanKind(trace.SpanKindClient))
	}
	_, s := t.tracer.Start(ctx, name, opts...)
	return span{s}
}

type span struct {
	span trace.Span
}

func (s span) SetTags(tags tracing.Tags) {
	if failed, _ := tags[tracing.TagError].(bool); failed {
		s.span.SetStatus(codes.Error, "")
	}
	s.span.SetAttributes(attributes(tags)...)
}

func (s span) Finish() { s.span.End() }

func (s span) Context(ctx context.Context) context.Context {
	return trace.ContextWithSpan(ctx, s.span)
}

func attributes(tags tracing.Tags) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(tags))
	for k, v := range tags {
		if k == tracing.TagSpanKind {
			continue
		}
		switch v := v.(type) {
		case string:
			kvs = append(kvs, attribute.String(k, v))
		case bool:
			kvs = append(kvs, attribute.Bool(k, v))
		case int:
			kvs = append(kvs, attribute.Int(k, v))
		case int64:
			kvs = append(kvs, attribute.Int64(k, v))
		case float64:
			kvs = append(kvs, attribute.Float64(k, v))
		default:
			kvs = append(kvs, attribute.String(k, fmt.Sprint(v)))
		}
	}
	return kvs
}

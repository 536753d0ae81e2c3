package client

import (
	"net/http"
	"net/textproto"

	"go.uber.org/zap"

	"github.com/ozontech/typedhttp/codec"
	"github.com/ozontech/typedhttp/exchange"
	"github.com/ozontech/typedhttp/report"
	"github.com/ozontech/typedhttp/tracing"
)

type Option interface {
	apply(c *config)
}

type config struct {
	baseURL       string
	agent         exchange.Agent
	header        http.Header
	log           *zap.Logger
	tracer        tracing.Tracer
	reporter      report.Acquirer
	requestCodec  codec.Codec
	responseCodec codec.Codec
}

func (c config) clone() config {
	c.header = c.header.Clone()
	return c
}

type optionFunc func(c *config)

func (f optionFunc) apply(c *config) { f(c) }

// WithBaseURL sets the URL relative request paths are resolved against.
func WithBaseURL(u string) Option {
	return optionFunc(func(c *config) { c.baseURL = u })
}

// WithAgent sets the agent used by calls that do not bring their own.
func WithAgent(agent exchange.Agent) Option {
	return optionFunc(func(c *config) { c.agent = agent })
}

type headerOpts []string

func (h headerOpts) apply(c *config) {
	if c.header == nil {
		c.header = make(http.Header, len(h)/2)
	}
	for i := 0; i+1 < len(h); i += 2 {
		c.header.Set(h[i], h[i+1])
	}
}

// WithHeader adds a header sent with every call. It overrides the JSON defaults.
func WithHeader(k, v string) Option {
	return headerOpts{k, v}
}

// WithHeaders adds key value pairs, see WithHeader.
func WithHeaders(kv ...string) Option {
	return headerOpts(kv)
}

func WithLogger(log *zap.Logger) Option {
	return optionFunc(func(c *config) { c.log = log })
}

func WithTracer(tracer tracing.Tracer) Option {
	return optionFunc(func(c *config) { c.tracer = tracer })
}

// WithReporter collects per-request statistics.
func WithReporter(r report.Acquirer) Option {
	return optionFunc(func(c *config) { c.reporter = r })
}

// WithRequestCodec makes calls validate and encode their payload with c.
// Without it a call must not carry a payload.
func WithRequestCodec(rc codec.Codec) Option {
	return optionFunc(func(c *config) { c.requestCodec = rc })
}

// WithResponseCodec makes calls decode the response body with c. Without it
// the body is discarded.
func WithResponseCodec(rc codec.Codec) Option {
	return optionFunc(func(c *config) { c.responseCodec = rc })
}

// CallOption configures a single Do.
type CallOption interface {
	applyCall(o *callOptions)
}

type callOptions struct {
	agent   exchange.Agent
	header  http.Header
	payload any
	span    tracing.Span
	log     *zap.Logger
	tag     string
}

type callOptionFunc func(o *callOptions)

func (f callOptionFunc) applyCall(o *callOptions) { f(o) }

// Agent overrides the client agent for one call.
func Agent(agent exchange.Agent) CallOption {
	return callOptionFunc(func(o *callOptions) { o.agent = agent })
}

// Header sets a header for one call. Call headers win over client headers.
func Header(k, v string) CallOption {
	return callOptionFunc(func(o *callOptions) {
		if o.header == nil {
			o.header = make(http.Header)
		}
		o.header[textproto.CanonicalMIMEHeaderKey(k)] = []string{v}
	})
}

// Payload is the domain value sent as the request body.
func Payload(v any) CallOption {
	return callOptionFunc(func(o *callOptions) { o.payload = v })
}

// ParentSpan parents the call span. Without it the parent is taken from ctx.
func ParentSpan(span tracing.Span) CallOption {
	return callOptionFunc(func(o *callOptions) { o.span = span })
}

// Logger overrides the client logger for one call.
func Logger(log *zap.Logger) CallOption {
	return callOptionFunc(func(o *callOptions) { o.log = log })
}

// Tag names the call in reports. The method is used by default.
func Tag(tag string) CallOption {
	return callOptionFunc(func(o *callOptions) { o.tag = tag })
}

// Package client runs typed JSON requests over HTTP/1.1: payloads are checked
// and encoded by a codec before any I/O, responses are decoded by another.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/ozontech/typedhttp/body"
	"github.com/ozontech/typedhttp/codec"
	"github.com/ozontech/typedhttp/consts"
	"github.com/ozontech/typedhttp/exchange"
	"github.com/ozontech/typedhttp/jsonwire"
	"github.com/ozontech/typedhttp/report"
	"github.com/ozontech/typedhttp/report/noop"
	"github.com/ozontech/typedhttp/tracing"
	"github.com/ozontech/typedhttp/utils/lru"
	"github.com/ozontech/typedhttp/utils/pool"
)

var (
	clientID       atomic.Uint32
	requestCounter atomic.Uint64
)

type Client struct {
	cfg     config
	id      uint32
	baseURL *url.URL
	log     *zap.Logger

	urls       *lru.LRU[*url.URL]
	collectors *pool.SlicePool[*body.Collector]
}

// Response is the outcome of a call. Payload is nil when the client has no
// response codec.
type Response struct {
	StatusCode int
	Header     http.Header
	Payload    any
}

func New(opts ...Option) (*Client, error) {
	var cfg config
	for _, o := range opts {
		o.apply(&cfg)
	}
	return newClient(cfg)
}

// With derives a client: the receiver's configuration with opts applied on top.
func (c *Client) With(opts ...Option) (*Client, error) {
	cfg := c.cfg.clone()
	for _, o := range opts {
		o.apply(&cfg)
	}
	return newClient(cfg)
}

func newClient(cfg config) (*Client, error) {
	if cfg.log == nil {
		cfg.log = zap.NewNop()
	}
	if cfg.tracer == nil {
		cfg.tracer = tracing.Noop
	}
	if cfg.reporter == nil {
		cfg.reporter = noop.New()
	}
	if err := validHeader(cfg.header); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		id:         clientID.Add(1) - 1,
		urls:       lru.New[*url.URL](consts.URLCacheSize),
		collectors: pool.NewSlicePoolSize[*body.Collector](consts.CollectorPoolSize).WithReset((*body.Collector).Reset),
	}
	if cfg.baseURL != "" {
		u, err := url.Parse(cfg.baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: base url: %w", ErrConfiguration, err)
		}
		c.baseURL = u
	}
	c.log = cfg.log.Named("client").With(zap.Uint32("client-id", c.id))
	return c, nil
}

func validHeader(h http.Header) error {
	for k, vs := range h {
		if !httpguts.ValidHeaderFieldName(k) {
			return fmt.Errorf("%w: invalid header name %q", ErrConfiguration, k)
		}
		for _, v := range vs {
			if !httpguts.ValidHeaderFieldValue(v) {
				return fmt.Errorf("%w: invalid value for header %q", ErrConfiguration, k)
			}
		}
	}
	return nil
}

// call is the state of one Do.
type call struct {
	id      string
	method  string
	url     *url.URL
	opts    callOptions
	started time.Time
	log     *zap.Logger
	state   report.RequestState
}

func (c *Client) requestID(started time.Time) string {
	b := make([]byte, 0, 32)
	b = strconv.AppendInt(b, started.UnixMilli(), 10)
	b = append(b, ':')
	b = strconv.AppendUint(b, uint64(c.id), 10)
	b = append(b, ':')
	b = strconv.AppendUint(b, requestCounter.Add(1)-1, 10)
	return string(b)
}

func (c *Client) resolve(path string) (*url.URL, error) {
	return c.urls.GetOrAdd(path, func() (*url.URL, error) {
		ref, err := url.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		if c.baseURL != nil {
			return c.baseURL.ResolveReference(ref), nil
		}
		if !ref.IsAbs() {
			return nil, fmt.Errorf("%w: relative path %q without a base url", ErrConfiguration, path)
		}
		return ref, nil
	})
}

// Do sends one request. path is resolved against the base URL.
func (c *Client) Do(ctx context.Context, method, path string, opts ...CallOption) (*Response, error) {
	cl := &call{method: method, started: time.Now()}
	for _, o := range opts {
		o.applyCall(&cl.opts)
	}
	cl.id = c.requestID(cl.started)

	u, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	cl.url = u

	log := c.log
	if cl.opts.log != nil {
		log = cl.opts.log
	}
	cl.log = log.With(zap.String("req-id", cl.id), zap.String("url", u.String()))

	tag := cl.opts.tag
	if tag == "" {
		tag = method
	}
	cl.state = c.cfg.reporter.Acquire(tag)
	defer cl.state.End()

	span := c.cfg.tracer.StartSpan(ctx, method+" "+u.String(), cl.opts.span, tracing.Tags{
		tracing.TagSpanKind:    tracing.SpanKindClient,
		tracing.TagPeerAddress: u.Host,
		tracing.TagHTTPMethod:  method,
		tracing.TagHTTPURL:     u.String(),
	})
	defer span.Finish()

	resp, err := c.do(span.Context(ctx), cl)
	if err != nil {
		cl.state.IoError(err)
		span.SetTags(tracing.Tags{
			tracing.TagError:            true,
			tracing.TagSamplingPriority: 1,
		})
		return nil, err
	}
	span.SetTags(tracing.Tags{tracing.TagHTTPStatusCode: resp.StatusCode})
	return resp, nil
}

func (cl *call) latency() zap.Field {
	return zap.Duration("latency", time.Since(cl.started))
}

func (c *Client) do(ctx context.Context, cl *call) (*Response, error) {
	payload, err := c.encode(cl)
	if err != nil {
		return nil, err
	}
	header, err := c.header(cl.opts.header)
	if err != nil {
		return nil, err
	}
	agent, err := c.agent(cl)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	req.Header = header

	var p *body.Payload
	var pr *io.PipeReader
	var pw *io.PipeWriter
	if payload != nil {
		p = body.NewPayload(payload)
		pr, pw = io.Pipe()
		req.Body = pr
		req.ContentLength = p.Size()
		cl.state.SetSize(len(payload))
	}

	ex := exchange.Start(ctx, agent, req)
	// the transport pulls the body only while writing the request, which
	// happens after the socket is connected
	if pw != nil {
		go send(pw, newBodyReader(p))
	}
	abort := func() {
		ex.Discard()
		if pr != nil {
			pr.Close()
		}
	}

	if err := ex.AwaitAssigned(ctx); err != nil {
		abort()
		return nil, err
	}
	cl.log.Debug("socket assigned", cl.latency())

	if err := ex.AwaitConnected(ctx); err != nil {
		abort()
		return nil, err
	}
	cl.state.Connected()
	cl.log.Debug("socket connected", cl.latency())

	resp, err := ex.AwaitResponse(ctx)
	if err != nil {
		abort()
		return nil, err
	}
	defer resp.Body.Close()
	cl.state.OnStatus(resp.StatusCode)
	cl.log.Debug("response headers received", cl.latency(), zap.Int("status", resp.StatusCode))

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header}
	if c.cfg.responseCodec == nil {
		n, err := io.Copy(io.Discard, resp.Body)
		if err != nil {
			cl.log.Debug("response body discarded early", zap.Error(err))
		}
		cl.state.SetResponseSize(int(n))
		return out, nil
	}

	v, n, err := c.read(resp.Body, c.cfg.responseCodec)
	cl.state.SetResponseSize(n)
	if err != nil {
		return nil, err
	}
	cl.log.Debug("response payload received", cl.latency(), zap.Int("size", n))
	out.Payload = v
	return out, nil
}

// newBodyReader wraps the encoded payload on its way to the pipe.
var newBodyReader = func(p *body.Payload) io.Reader { return p }

// send streams the request body. A copy error fails the round trip.
func send(pw *io.PipeWriter, r io.Reader) {
	_, err := io.Copy(pw, r)
	pw.CloseWithError(err)
}

func (c *Client) encode(cl *call) ([]byte, error) {
	rc := c.cfg.requestCodec
	if rc == nil {
		if cl.opts.payload != nil {
			return nil, fmt.Errorf("%w: a payload cannot be supplied without a request codec", ErrConfiguration)
		}
		return nil, nil
	}

	if err := codec.Validate(rc, cl.opts.payload); err != nil {
		cl.log.Warn("invalid request payload", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	wire, err := rc.Encode(cl.opts.payload)
	if err == nil {
		var b []byte
		if b, err = jsonwire.Marshal(wire); err == nil {
			return b, nil
		}
	}
	cl.log.Warn("error encoding request payload", zap.Error(err))
	return nil, &EncodeError{Err: err}
}

// header merges the JSON defaults, the client headers and the call headers,
// later ones win.
func (c *Client) header(callHeader http.Header) (http.Header, error) {
	if err := validHeader(callHeader); err != nil {
		return nil, err
	}
	h := make(http.Header, 2+len(c.cfg.header)+len(callHeader))
	h.Set(consts.HeaderAccept, consts.MediaTypeJSON)
	h.Set(consts.HeaderContentType, consts.ContentTypeJSON)
	for k, vs := range c.cfg.header {
		h[k] = vs
	}
	for k, vs := range callHeader {
		h[k] = vs
	}
	return h, nil
}

func (c *Client) agent(cl *call) (exchange.Agent, error) {
	scheme := cl.url.Scheme
	if !exchange.SupportedScheme(scheme) {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedProtocol, scheme)
	}
	if cl.opts.agent != nil {
		return cl.opts.agent, nil
	}
	if c.cfg.agent != nil {
		return c.cfg.agent, nil
	}
	agent, _ := exchange.DefaultAgent(scheme)
	return agent, nil
}

func (c *Client) read(r io.Reader, rc codec.Codec) (any, int, error) {
	collector := c.collectors.AcquireOrNew(body.NewCollector)
	defer c.collectors.Release(collector)

	if _, err := io.Copy(collector, r); err != nil {
		return nil, collector.Len(), err
	}
	v, err := decode(collector.Collect(), rc)
	return v, collector.Len(), err
}

// Read collects r, parses it as JSON and decodes it with rc.
func Read(r io.Reader, rc codec.Codec) (any, error) {
	b, err := body.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decode(b, rc)
}

func decode(b []byte, rc codec.Codec) (any, error) {
	wire, err := jsonwire.Unmarshal(b)
	if err != nil {
		return nil, &ResponseJSONError{Err: err}
	}
	v, err := rc.Decode(wire)
	if err != nil {
		return nil, &ResponseDecodeError{Issues: codec.AsErrors(err)}
	}
	return v, nil
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ozontech/typedhttp/client"
	"github.com/ozontech/typedhttp/codec"
	"github.com/ozontech/typedhttp/jsonwire"
)

// newEcho answers with the method, path, user agent and JSON body it received.
// Extra fields are added to every answer.
func newEcho(t *testing.T, extra map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		answer := map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"ua":     r.UserAgent(),
		}
		if r.ContentLength > 0 {
			payload, err := client.Read(r.Body, codec.Any())
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			answer["payload"] = payload
		}
		for k, v := range extra {
			answer[k] = v
		}
		b, err := jsonwire.Marshal(answer)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

var putWebtaskInput = codec.Exact(codec.Intersection(
	codec.Type(codec.Props{"code": codec.String()}),
	codec.Partial(codec.Props{
		"meta":    codec.Record(codec.String()),
		"secrets": codec.Record(codec.String()),
	}),
))

func webtaskManifest(baseURL string) Manifest {
	return Manifest{
		BaseURL: baseURL,
		Operations: map[string]Operation{
			"putWebtask": {
				Method:       http.MethodPut,
				PathTemplate: "/{container}/{name}",
				PathParamCodec: codec.Type(codec.Props{
					"container": codec.String(),
					"name":      codec.String(),
				}),
				InputCodec: putWebtaskInput,
				OutputCodec: codec.Exact(codec.Type(codec.Props{
					"method": codec.Literal(http.MethodPut),
					"path":   codec.String(),
					"ua":     codec.String(),
				})),
			},
			"getWebtask": {
				Method:       http.MethodGet,
				PathTemplate: "/{container}/{name}",
				OutputCodec:  codec.Type(codec.Props{"path": codec.String()}),
			},
		},
	}
}

func TestService(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	srv, _ := newEcho(t, map[string]any{"no": "good"})
	s, err := New(webtaskManifest(srv.URL), client.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	a.Equal([]string{"getWebtask", "putWebtask"}, s.Names())

	putWebtask, ok := s.Operation("putWebtask")
	require.True(t, ok)

	resp, err := putWebtask(context.Background(), Args{
		Params: map[string]any{"container": "c", "name": "n"},
		Data:   map[string]any{"code": "hello world"},
	})
	require.NoError(t, err)
	a.Equal(http.StatusOK, resp.StatusCode)
	a.Equal(map[string]any{
		"method": http.MethodPut,
		"path":   "/c/n",
		"ua":     "typedhttp",
	}, resp.Payload)

	resp, err = s.Call(context.Background(), "getWebtask", Args{
		Params: map[string]any{"container": "c", "name": 7},
	})
	require.NoError(t, err)
	a.Equal(map[string]any{
		"method": http.MethodGet,
		"path":   "/c/7",
		"ua":     "typedhttp",
		"no":     "good",
	}, resp.Payload)
}

func TestMissingParam(t *testing.T) {
	t.Parallel()

	srv, _ := newEcho(t, nil)
	s, err := New(webtaskManifest(srv.URL))
	require.NoError(t, err)

	resp, err := s.Call(context.Background(), "getWebtask", &Args{
		Params: map[string]any{"container": "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/c/<nil>", resp.Payload.(map[string]any)["path"])
}

func TestInvalidDataSkipsIO(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	srv, hits := newEcho(t, nil)
	s, err := New(webtaskManifest(srv.URL))
	require.NoError(t, err)

	ctx := context.Background()
	params := map[string]any{"container": "c", "name": "n"}
	for _, data := range []any{
		nil,
		map[string]any{"code": 1.0},
		map[string]any{"code": "hello world", "no": "good"},
	} {
		_, err = s.Call(ctx, "putWebtask", Args{Params: params, Data: data})
		a.ErrorIs(err, client.ErrInvalidPayload)
	}

	_, err = s.Call(ctx, "getWebtask", Args{Params: params, Data: "unexpected"})
	a.ErrorIs(err, client.ErrConfiguration)

	_, err = s.Call(ctx, "putWebtask", "not args")
	a.ErrorIs(err, ErrInvalidArguments)

	a.Zero(hits.Load())
}

func TestUnknownOperation(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	s, err := New(webtaskManifest("http://example.test"))
	require.NoError(t, err)

	fn, ok := s.Operation("deleteWebtask")
	a.False(ok)
	a.Nil(fn)

	_, err = s.Call(context.Background(), "deleteWebtask", Args{})
	a.ErrorIs(err, ErrUnknownOperation)

	_, err = Bind[Args, any](s, "deleteWebtask")
	a.ErrorIs(err, ErrUnknownOperation)
}

func TestMapArguments(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	srv, _ := newEcho(t, nil)
	op := Operation{
		Method:       http.MethodPut,
		PathTemplate: "/path/{hello}",
		InputCodec:   codec.Type(codec.Props{"hello": codec.String()}),
		OutputCodec: codec.Type(codec.Props{
			"path":    codec.Literal("/path/world"),
			"method":  codec.Literal(http.MethodPut),
			"payload": codec.Type(codec.Props{"hello": codec.Literal("world")}),
		}),
	}
	mapped := op
	mapped.MapArguments = func(arg any) (Args, error) {
		in := arg.(map[string]any)
		return Args{
			Params: map[string]any{"hello": in["hello"]},
			Data:   map[string]any{"hello": in["hello"]},
		}, nil
	}

	s, err := New(Manifest{
		BaseURL:    srv.URL,
		Operations: map[string]Operation{"plain": op, "mapped": mapped},
	})
	require.NoError(t, err)

	ctx := context.Background()
	viaMapping, err := s.Call(ctx, "mapped", map[string]any{"hello": "world"})
	require.NoError(t, err)
	direct, err := s.Call(ctx, "plain", Args{
		Params: map[string]any{"hello": "world"},
		Data:   map[string]any{"hello": "world"},
	})
	require.NoError(t, err)

	a.Equal(direct.StatusCode, viaMapping.StatusCode)
	a.Equal(direct.Payload, viaMapping.Payload)
}

func TestInvalidManifest(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for _, op := range []Operation{
		{PathTemplate: "/"},
		{Method: http.MethodGet, PathTemplate: "/{container"},
		{Method: http.MethodGet, PathTemplate: "/{}"},
	} {
		_, err := New(Manifest{
			BaseURL:    "http://example.test",
			Operations: map[string]Operation{"op": op},
		})
		a.ErrorIs(err, client.ErrConfiguration)
	}

	_, err := New(Manifest{BaseURL: "http://[::1"})
	a.ErrorIs(err, client.ErrConfiguration)
}

func TestParsePath(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p, err := parsePath("/v1/{container}/tasks/{name}.json")
	require.NoError(t, err)
	a.Equal("/v1/c/tasks/n.json", p.expand(map[string]any{"container": "c", "name": "n"}))
	a.Equal("/v1/<nil>/tasks/<nil>.json", p.expand(nil))

	p, err = parsePath("")
	require.NoError(t, err)
	a.Equal("", p.expand(nil))
}

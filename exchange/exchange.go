// Package exchange turns one HTTP round trip into three ordered stages:
// socket assigned, socket connected and response headers received.
package exchange

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"sync"
)

type Stage int

const (
	StageAssigned Stage = iota + 1
	StageConnected
	StageResponse
)

func (s Stage) String() string {
	switch s {
	case StageAssigned:
		return "assigned"
	case StageConnected:
		return "connected"
	case StageResponse:
		return "response"
	}
	return "unknown"
}

type listener struct {
	stage   Stage
	event   chan struct{}
	failure chan error
}

// Exchange is an in-flight round trip. Stage events are latched, so an
// await that starts after its event fired returns immediately.
type Exchange struct {
	mu        sync.Mutex
	reached   Stage
	resp      *http.Response
	err       error
	listeners map[*listener]struct{}
	done      chan struct{}
}

// Start runs agent.RoundTrip(req) in the background. req is bound to ctx.
func Start(ctx context.Context, agent http.RoundTripper, req *http.Request) *Exchange {
	e := &Exchange{
		listeners: make(map[*listener]struct{}),
		done:      make(chan struct{}),
	}
	trace := &httptrace.ClientTrace{
		ConnectStart: e.connectStart,
		GotConn:      e.gotConn,
	}
	req = req.WithContext(httptrace.WithClientTrace(ctx, trace))

	go func() {
		defer close(e.done)
		resp, err := agent.RoundTrip(req)
		if err != nil {
			e.fail(err)
			return
		}
		e.respond(resp)
	}()
	return e
}

func (e *Exchange) connectStart(string, string) { e.emit(StageAssigned) }

// gotConn fires for fresh and reused connections alike.
func (e *Exchange) gotConn(httptrace.GotConnInfo) {
	e.emit(StageAssigned)
	e.emit(StageConnected)
}

func (e *Exchange) emit(stage Stage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err != nil || stage <= e.reached {
		return
	}
	e.reached = stage
	for l := range e.listeners {
		if l.stage <= stage {
			close(l.event)
			delete(e.listeners, l)
		}
	}
}

func (e *Exchange) respond(resp *http.Response) {
	e.mu.Lock()
	e.resp = resp
	e.mu.Unlock()
	// agents that bypass httptrace still settle every stage in order
	e.emit(StageAssigned)
	e.emit(StageConnected)
	e.emit(StageResponse)
}

func (e *Exchange) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.err = err
	for l := range e.listeners {
		l.failure <- err
		delete(e.listeners, l)
	}
}

// listen registers a listener pair for stage. It returns a nil listener when
// the stage is already settled.
func (e *Exchange) listen(stage Stage) (*listener, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reached >= stage {
		return nil, nil
	}
	if e.err != nil {
		return nil, e.err
	}
	l := &listener{
		stage:   stage,
		event:   make(chan struct{}),
		failure: make(chan error, 1),
	}
	e.listeners[l] = struct{}{}
	return l, nil
}

func (e *Exchange) release(l *listener) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.listeners, l)
}

func (e *Exchange) await(ctx context.Context, stage Stage) error {
	l, err := e.listen(stage)
	if l == nil {
		return err
	}
	defer e.release(l)

	select {
	case <-l.event:
		return nil
	case err := <-l.failure:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitAssigned waits until a socket is associated with the request.
func (e *Exchange) AwaitAssigned(ctx context.Context) error {
	return e.await(ctx, StageAssigned)
}

// AwaitConnected waits until the socket finished connecting.
func (e *Exchange) AwaitConnected(ctx context.Context) error {
	return e.await(ctx, StageConnected)
}

// AwaitResponse waits for the response headers. The caller owns the
// returned body.
func (e *Exchange) AwaitResponse(ctx context.Context) (*http.Response, error) {
	if err := e.await(ctx, StageResponse); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resp, nil
}

// Discard releases a response nobody is going to read. It does not block.
func (e *Exchange) Discard() {
	go func() {
		<-e.done
		if e.resp != nil {
			e.resp.Body.Close()
		}
	}()
}

// Done is closed when the round trip returned.
func (e *Exchange) Done() <-chan struct{} { return e.done }

func (e *Exchange) pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

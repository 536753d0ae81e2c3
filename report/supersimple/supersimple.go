package supersimple

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ozontech/typedhttp/report"
	"github.com/ozontech/typedhttp/utils/pool"
)

type Reporter struct {
	w       io.Writer
	pool    *pool.SlicePool[*requestState]
	closeCh chan struct{}

	timeout time.Duration

	start time.Time
	ok    atomic.Uint32
	nook  atomic.Uint32
	req   atomic.Uint32
	size  atomic.Uint64

	lastOk   uint32
	lastNook uint32
	lastReq  uint32
	lastSize uint64
	lastTime time.Time
}

// New reports per second totals to w. Requests slower than timeout are not ok.
func New(w io.Writer, timeout time.Duration) *Reporter {
	now := time.Now()
	return &Reporter{
		w:        w,
		pool:     pool.NewSlicePoolSize[*requestState](100),
		closeCh:  make(chan struct{}),
		start:    now,
		lastTime: now,
		timeout:  timeout,
	}
}

func (a *Reporter) Run() error {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	defer a.total()
	for {
		select {
		case now := <-t.C:
			a.report(now)
		case <-a.closeCh:
			return nil
		}
	}
}

func (a *Reporter) Close() error {
	close(a.closeCh)
	return nil
}

func (a *Reporter) Acquire(string) report.RequestState {
	a.req.Add(1)
	ss := a.pool.AcquireOrNew(func() *requestState {
		return &requestState{reporter: a}
	})
	ss.reset()
	return ss
}

func (a *Reporter) accept(s *requestState) {
	if s.result() {
		a.ok.Add(1)
	} else {
		a.nook.Add(1)
	}

	a.pool.Release(s)
}

func (a *Reporter) addSize(size int) {
	a.size.Add(uint64(size))
}

func (a *Reporter) write(ok, nook, req uint32, size uint64, d time.Duration) {
	total := ok + nook
	miliSeconds := d.Milliseconds()
	if miliSeconds > 0 {
		fmt.Fprintf(a.w,
			"total=%d ok=%d nook=%d req=%d size=%s req/s=%.2f resp/s=%.2f\n",
			total, ok, nook, req,
			humanize.Bytes(size*1000/uint64(miliSeconds)),
			float64(req)*1000/float64(miliSeconds), float64(total)*1000/float64(miliSeconds),
		)
	} else {
		fmt.Fprintf(a.w, "total=%d ok=%d nook=%d req=%d\n", total, ok, nook, req)
	}
}

func (a *Reporter) total() {
	fmt.Fprintln(a.w, "total")
	a.write(a.ok.Load(), a.nook.Load(), a.req.Load(), a.size.Load(), time.Since(a.start))
}

func (a *Reporter) report(now time.Time) {
	ok, nook, req, size, period := a.ok.Load(), a.nook.Load(), a.req.Load(), a.size.Load(), now.Sub(a.lastTime)
	a.write(ok-a.lastOk, nook-a.lastNook, req-a.lastReq, size-a.lastSize, period)
	a.lastOk, a.lastNook, a.lastTime, a.lastReq, a.lastSize = ok, nook, now, req, size
}

type requestState struct {
	reporter *Reporter
	noOk     bool
	start    time.Time
}

func (s *requestState) reset() {
	s.start = time.Now()
	s.noOk = false
}

func (s *requestState) SetSize(size int) {
	s.reporter.addSize(size)
}

func (s *requestState) OnStatus(code int) {
	if code >= 400 {
		s.noOk = true
	}
}

func (s *requestState) Connected()          {}
func (s *requestState) SetResponseSize(int) {}
func (s *requestState) IoError(error)       { s.noOk = true }

func (s *requestState) result() (ok bool) {
	if s.noOk {
		return false
	}
	return s.reporter.timeout <= 0 || time.Since(s.start) <= s.reporter.timeout
}

func (s *requestState) End() {
	s.reporter.accept(s)
}

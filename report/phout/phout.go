// Package phout writes one tab separated line per request in the phantom
// "phout" format understood by load testing report tools.
package phout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"syscall"
	"time"

	"github.com/ozontech/typedhttp/report"
	"github.com/ozontech/typedhttp/utils/pool"
)

var now = time.Now

type Reporter struct {
	w       *bufio.Writer
	ch      chan *requestState
	pool    *pool.SlicePool[*requestState]
	timeout time.Duration
}

func New(w io.Writer, timeout time.Duration) *Reporter {
	return &Reporter{
		bufio.NewWriter(w),
		make(chan *requestState, 256),
		pool.NewSlicePoolSize[*requestState](256),
		timeout,
	}
}

func (r *Reporter) Run() error {
	for s := range r.ch {
		_, err := r.w.Write(s.result())
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}
		r.pool.Release(s)
	}
	return r.w.Flush()
}

func (r *Reporter) Close() error {
	close(r.ch)
	return nil
}

func (r *Reporter) Acquire(tag string) report.RequestState {
	ss, ok := r.pool.Acquire()
	if !ok {
		ss = &requestState{
			reportLine: make([]byte, 128),
			reporter:   r,
			timeout:    r.timeout,
		}
	}
	ss.reset(tag)
	return ss
}

func (r *Reporter) accept(s *requestState) {
	r.ch <- s
}

type requestState struct {
	reportLine []byte

	reporter *Reporter
	timeout  time.Duration

	status int
	ioErr  error

	reqSize       int
	respSize      int
	startTime     time.Time
	connectedTime time.Time
	statusTime    time.Time
	endTime       time.Time
	tag           string
}

func (s *requestState) reset(tag string) {
	s.tag = tag
	s.startTime = now()
	s.connectedTime = time.Time{}
	s.statusTime = time.Time{}

	s.status = 0
	s.ioErr = nil
	s.reqSize = 0
	s.respSize = 0
}

func (s *requestState) SetSize(size int) {
	s.reqSize = size
}

func (s *requestState) Connected() {
	s.connectedTime = now()
}

func (s *requestState) OnStatus(code int) {
	s.status = code
	s.statusTime = now()
}

func (s *requestState) SetResponseSize(size int) {
	s.respSize = size
}

func (s *requestState) IoError(err error) {
	s.ioErr = err
}

const (
	tabChar = '\t'
	// errno of a failure that carries no syscall.Errno
	unknownErrno = 999
)

func micro(from, to time.Time) int64 {
	if from.IsZero() || to.IsZero() {
		return 0
	}
	return to.Sub(from).Microseconds()
}

func (s *requestState) result() []byte {
	s.reportLine = s.reportLine[:0]
	s.reportLine = strconv.AppendInt(s.reportLine, s.startTime.Unix(), 10)
	s.reportLine = append(s.reportLine, '.')
	s.reportLine = strconv.AppendInt(s.reportLine, int64(s.startTime.Nanosecond()/1e6), 10)
	s.reportLine = append(s.reportLine, tabChar)
	s.reportLine = append(s.reportLine, s.tag...)
	s.reportLine = append(s.reportLine, tabChar)

	rtt := s.endTime.Sub(s.startTime)
	// rtt
	s.reportLine = strconv.AppendInt(s.reportLine, rtt.Microseconds(), 10)
	s.reportLine = append(s.reportLine, tabChar)
	// connect
	s.reportLine = strconv.AppendInt(s.reportLine, micro(s.startTime, s.connectedTime), 10)
	s.reportLine = append(s.reportLine, tabChar)
	// send
	s.reportLine = append(s.reportLine, '0', tabChar)
	// latency
	s.reportLine = strconv.AppendInt(s.reportLine, micro(s.connectedTime, s.statusTime), 10)
	s.reportLine = append(s.reportLine, tabChar)
	// receive
	s.reportLine = strconv.AppendInt(s.reportLine, micro(s.statusTime, s.endTime), 10)
	s.reportLine = append(s.reportLine, tabChar)
	// interval event
	s.reportLine = append(s.reportLine, '0', tabChar)
	// request bytes
	s.reportLine = strconv.AppendInt(s.reportLine, int64(s.reqSize), 10)
	s.reportLine = append(s.reportLine, tabChar)
	// response bytes
	s.reportLine = strconv.AppendInt(s.reportLine, int64(s.respSize), 10)
	s.reportLine = append(s.reportLine, tabChar)
	// errno
	var errNo syscall.Errno
	switch {
	case s.ioErr != nil:
		if !errors.As(s.ioErr, &errNo) {
			errNo = unknownErrno
		}
	case s.timeout > 0 && rtt > s.timeout:
		errNo = syscall.ETIMEDOUT
	}
	s.reportLine = strconv.AppendInt(s.reportLine, int64(errNo), 10)
	s.reportLine = append(s.reportLine, tabChar)
	// proto code
	s.reportLine = strconv.AppendInt(s.reportLine, int64(s.status), 10)
	s.reportLine = append(s.reportLine, '\n')
	return s.reportLine
}

func (s *requestState) End() {
	s.endTime = now()
	s.reporter.accept(s)
}

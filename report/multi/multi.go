package multi

import (
	"golang.org/x/sync/errgroup"

	"github.com/ozontech/typedhttp/report"
)

type Multi struct {
	nested []report.Reporter
}

func New(nested ...report.Reporter) *Multi {
	return &Multi{nested}
}

func (m *Multi) Run() error {
	g := new(errgroup.Group)
	for _, r := range m.nested {
		g.Go(r.Run)
	}
	return g.Wait()
}

func (m *Multi) Close() error {
	g := new(errgroup.Group)
	for _, r := range m.nested {
		g.Go(r.Close)
	}
	return g.Wait()
}

func (m *Multi) Acquire(tag string) report.RequestState {
	ms := make(multiState, len(m.nested))
	for i, r := range m.nested {
		ms[i] = r.Acquire(tag)
	}
	return ms
}

type multiState []report.RequestState

func (s multiState) SetSize(n int) {
	for _, s := range s {
		s.SetSize(n)
	}
}

func (s multiState) Connected() {
	for _, s := range s {
		s.Connected()
	}
}

func (s multiState) OnStatus(code int) {
	for _, s := range s {
		s.OnStatus(code)
	}
}

func (s multiState) SetResponseSize(n int) {
	for _, s := range s {
		s.SetResponseSize(n)
	}
}

func (s multiState) IoError(err error) {
	for _, s := range s {
		s.IoError(err)
	}
}

func (s multiState) End() {
	for _, s := range s {
		s.End()
	}
}

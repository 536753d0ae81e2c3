package noop

import (
	"github.com/ozontech/typedhttp/report"
)

type Noop struct {
	close chan struct{}
}

func New() *Noop {
	return &Noop{make(chan struct{})}
}

func (m *Noop) Run() error {
	<-m.close
	return nil
}

func (m *Noop) Close() error {
	close(m.close)
	return nil
}

func (m *Noop) Acquire(string) report.RequestState {
	return noopState{}
}

type noopState struct{}

func (noopState) SetSize(int)         {}
func (noopState) Connected()          {}
func (noopState) OnStatus(int)        {}
func (noopState) SetResponseSize(int) {}
func (noopState) IoError(error)       {}
func (noopState) End()                {}

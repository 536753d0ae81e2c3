package tracing

import (
	"context"
	"maps"
	"sync"
)

// Recorder keeps finished and open spans in memory.
type Recorder struct {
	mu     sync.Mutex
	spans  []*RecordedSpan
	nextID uint64
}

func NewRecorder() *Recorder {
	return new(Recorder)
}

type RecordedSpan struct {
	rec      *Recorder
	ID       uint64
	ParentID uint64
	Name     string
	tags     Tags
	finished int
}

func (r *Recorder) StartSpan(ctx context.Context, name string, parent Span, tags Tags) Span {
	if parent == nil {
		parent = SpanFromContext(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s := &RecordedSpan{
		rec:  r,
		ID:   r.nextID,
		Name: name,
		tags: maps.Clone(tags),
	}
	if s.tags == nil {
		s.tags = Tags{}
	}
	if p, ok := parent.(*RecordedSpan); ok {
		s.ParentID = p.ID
	}
	r.spans = append(r.spans, s)
	return s
}

// Spans returns every span started so far, in start order.
func (r *Recorder) Spans() []*RecordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RecordedSpan(nil), r.spans...)
}

func (s *RecordedSpan) SetTags(tags Tags) {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	maps.Copy(s.tags, tags)
}

func (s *RecordedSpan) Finish() {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	s.finished++
}

func (s *RecordedSpan) Context(ctx context.Context) context.Context {
	return ContextWithSpan(ctx, s)
}

func (s *RecordedSpan) Tags() Tags {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	return maps.Clone(s.tags)
}

// Finished reports how many times Finish was called.
func (s *RecordedSpan) Finished() int {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	return s.finished
}

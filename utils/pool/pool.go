package pool

import "sync"

// SlicePool is a LIFO free list. Unlike sync.Pool it never drops values,
// so released buffers keep their grown capacity between requests.
type SlicePool[T any] struct {
	mu    sync.Mutex
	s     []T
	reset func(T)
}

func NewSlicePool[T any]() *SlicePool[T] {
	return new(SlicePool[T])
}

func NewSlicePoolSize[T any](size int) *SlicePool[T] {
	return &SlicePool[T]{s: make([]T, 0, size)}
}

// WithReset installs a hook that clears a value before it goes back to the pool.
func (p *SlicePool[T]) WithReset(reset func(T)) *SlicePool[T] {
	p.reset = reset
	return p
}

func (p *SlicePool[T]) Acquire() (v T, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l := len(p.s)
	if l == 0 {
		return v, false
	}

	v = p.s[l-1]
	var zero T
	p.s[l-1] = zero
	p.s = p.s[:l-1]
	return v, true
}

// AcquireOrNew returns a pooled value or builds a fresh one.
func (p *SlicePool[T]) AcquireOrNew(build func() T) T {
	if v, ok := p.Acquire(); ok {
		return v
	}
	return build()
}

func (p *SlicePool[T]) Release(v T) {
	if p.reset != nil {
		p.reset(v)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.s = append(p.s, v)
}

func (p *SlicePool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.s)
}

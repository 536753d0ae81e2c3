package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlicePoolLIFO(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p := NewSlicePoolSize[*[]byte](2)
	_, ok := p.Acquire()
	a.False(ok)

	b1, b2 := new([]byte), new([]byte)
	p.Release(b1)
	p.Release(b2)
	a.Equal(2, p.Len())

	v, ok := p.Acquire()
	a.True(ok)
	a.Same(b2, v)

	v, ok = p.Acquire()
	a.True(ok)
	a.Same(b1, v)
	a.Zero(p.Len())
}

func TestSlicePoolReset(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p := NewSlicePool[*[]byte]().WithReset(func(b *[]byte) { *b = (*b)[:0] })
	b := []byte("dirty")
	p.Release(&b)

	v := p.AcquireOrNew(func() *[]byte { panic("must reuse pooled value") })
	a.Empty(*v)
	a.Equal(5, cap(*v))

	built := p.AcquireOrNew(func() *[]byte { return new([]byte) })
	a.NotNil(built)
}

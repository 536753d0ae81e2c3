package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstant(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	s, err := NewConstant(4)
	require.NoError(t, err)
	for n, want := range []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond} {
		at, ok := s.Next(int64(n))
		a.True(ok)
		a.Equal(want, at)
	}

	for _, freq := range []float64{0, -1} {
		_, err = NewConstant(freq)
		a.ErrorIs(err, ErrInvalidRate)
	}
}

func TestLimiters(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	s, err := NewConstant(10)
	require.NoError(t, err)

	count := NewCountLimiter(s, 2)
	_, ok := count.Next(1)
	a.True(ok)
	_, ok = count.Next(2)
	a.False(ok)

	dur := NewDurationLimiter(s, time.Second)
	at, ok := dur.Next(10)
	a.True(ok)
	a.Equal(time.Second, at)
	_, ok = dur.Next(11)
	a.False(ok)

	_, ok = NewDurationLimiter(count, time.Hour).Next(5)
	a.False(ok)
}

func TestUnlimited(t *testing.T) {
	t.Parallel()

	at, ok := Unlimited{}.Next(1 << 40)
	assert.True(t, ok)
	assert.Zero(t, at)
}

func TestLine(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	// 0 -> 10 rps over 10s: 50 requests in total, the 50th at 10s
	s, err := NewLine(0, 10, 10*time.Second)
	require.NoError(t, err)
	at, ok := s.Next(50)
	a.True(ok)
	a.InDelta(float64(10*time.Second), float64(at), float64(time.Millisecond))

	prev := time.Duration(-1)
	for n := int64(0); n < 50; n++ {
		at, ok := s.Next(n)
		a.True(ok)
		a.Greater(at, prev)
		prev = at
	}

	// a flat line is a constant rate
	s, err = NewLine(5, 5, time.Second)
	require.NoError(t, err)
	at, ok = s.Next(5)
	a.True(ok)
	a.Equal(time.Second, at)

	// falling to zero: 10 -> 0 over 2s sends 10 requests
	s, err = NewLine(10, 0, 2*time.Second)
	require.NoError(t, err)
	at, ok = s.Next(10)
	a.True(ok)
	a.InDelta(float64(2*time.Second), float64(at), float64(time.Millisecond))
	_, ok = s.Next(11)
	a.False(ok)

	for _, args := range [][2]float64{{0, 0}, {-1, 5}, {5, -1}} {
		_, err = NewLine(args[0], args[1], time.Second)
		a.ErrorIs(err, ErrInvalidRate)
	}
	_, err = NewLine(1, 2, 0)
	a.ErrorIs(err, ErrInvalidRate)
}

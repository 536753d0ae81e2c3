package lru

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	t.Parallel()

	a := assert.New(t)
	l := New[string](3)
	upper := func(s string) func() (string, error) {
		return func() (string, error) { return strings.ToUpper(s), nil }
	}

	for _, k := range []string{"one", "two", "three", "one"} {
		_, err := l.GetOrAdd(k, upper(k))
		a.NoError(err)
	}
	a.Equal(3, l.Len())

	v, err := l.GetOrAdd("four", upper("four"))
	a.NoError(err)
	a.Equal("FOUR", v)
	a.Equal(3, l.Len())

	lruOrder := []string{"four", "one", "three"}
	el := l.list.Front()
	for _, k := range lruOrder {
		_, ok := l.items[k]
		a.True(ok)
		a.Equal(k, el.Value.(*entry[string]).key)
		el = el.Next()
	}
}

func TestLRUCreateError(t *testing.T) {
	t.Parallel()

	a := assert.New(t)
	l := New[int](2)
	errBrand := errors.New("brand error")

	_, err := l.GetOrAdd("k", func() (int, error) { return 0, errBrand })
	a.ErrorIs(err, errBrand)
	a.Zero(l.Len())

	calls := 0
	create := func() (int, error) { calls++; return 42, nil }
	for i := 0; i < 3; i++ {
		v, err := l.GetOrAdd("k", create)
		a.NoError(err)
		a.Equal(42, v)
	}
	a.Equal(1, calls)
}

func TestLRUGetOrAddBytes(t *testing.T) {
	t.Parallel()

	a := assert.New(t)
	l := New[string](4)
	identity := func(k string) (string, error) { return k, nil }

	buf := []byte("content-type")
	v, err := l.GetOrAddBytes(buf, identity)
	a.NoError(err)
	a.Equal("content-type", v)

	// the stored key must not alias the caller's buffer
	copy(buf, "xxxxxxxxxxxx")
	v, err = l.GetOrAddBytes([]byte("content-type"), func(string) (string, error) {
		return "", errors.New("must be cached")
	})
	a.NoError(err)
	a.Equal("content-type", v)
	a.Equal(1, l.Len())
}

package body

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadEndsAtLength(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p := NewPayload([]byte("hello"))
	a.EqualValues(5, p.Size())

	buf := make([]byte, 3)
	n, err := p.Read(buf)
	a.NoError(err)
	a.Equal("hel", string(buf[:n]))

	n, err = p.Read(buf)
	a.ErrorIs(err, io.EOF)
	a.Equal("lo", string(buf[:n]))

	n, err = p.Read(buf)
	a.ErrorIs(err, io.EOF)
	a.Zero(n)
	a.EqualValues(5, p.Size())
}

func TestPayloadEmpty(t *testing.T) {
	t.Parallel()

	n, err := NewPayload(nil).Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestPayloadReader(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat(`{"k":"v"}`, 1000))
	require.NoError(t, iotest.TestReader(NewPayload(data), data))
}

func TestCollector(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	c := NewCollector()
	a.Equal([]byte{}, c.Collect())

	chunk := []byte("ab")
	_, err := c.Write(chunk)
	a.NoError(err)
	chunk[0] = 'x'
	a.Equal("ab", string(c.Collect()))

	_, _ = c.Write([]byte("cd"))
	_, _ = c.Write(nil)
	_, _ = c.Write([]byte("e"))
	a.Equal(5, c.Len())
	a.Equal("abcde", string(c.Collect()))

	c.Reset()
	a.Zero(c.Len())
	a.Equal([]byte{}, c.Collect())
}

func TestReadAll(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	data := bytes.Repeat([]byte("0123456789"), 10000)
	b, err := ReadAll(iotest.OneByteReader(NewPayload(data)))
	a.NoError(err)
	a.Equal(data, b)

	boom := errors.New("boom")
	_, err = ReadAll(iotest.ErrReader(boom))
	a.ErrorIs(err, boom)
}

package body

import (
	"io"
)

// Collector accumulates written chunks. The chunks are joined only by Collect.
type Collector struct {
	chunks [][]byte
	n      int
}

func NewCollector() *Collector {
	return new(Collector)
}

// Write copies b, the caller may reuse it afterwards.
func (c *Collector) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	c.chunks = append(c.chunks, append([]byte(nil), b...))
	c.n += len(b)
	return len(b), nil
}

func (c *Collector) Len() int { return c.n }

// Collect returns everything written so far as a single buffer.
func (c *Collector) Collect() []byte {
	switch len(c.chunks) {
	case 0:
		return []byte{}
	case 1:
		return c.chunks[0]
	}
	out := make([]byte, 0, c.n)
	for _, chunk := range c.chunks {
		out = append(out, chunk...)
	}
	return out
}

// Reset drops the collected chunks and keeps the chunk slice for reuse.
func (c *Collector) Reset() {
	clear(c.chunks)
	c.chunks = c.chunks[:0]
	c.n = 0
}

// ReadAll drains r into a fresh Collector and returns the joined bytes.
func ReadAll(r io.Reader) ([]byte, error) {
	c := NewCollector()
	if _, err := io.Copy(c, r); err != nil {
		return nil, err
	}
	return c.Collect(), nil
}

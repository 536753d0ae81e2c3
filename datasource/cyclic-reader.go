package datasource

import (
	"fmt"
	"io"
)

// CyclicReader rewinds rs at EOF. A newline is inserted at the seam when the
// data does not end with one, so line oriented readers never see the last and
// the first line glued together.
type CyclicReader struct {
	rs      io.ReadSeeker
	lastEOL bool
}

func NewCyclicReader(rs io.ReadSeeker) *CyclicReader {
	return &CyclicReader{rs: rs, lastEOL: true}
}

func (r *CyclicReader) Read(b []byte) (int, error) {
	n, err := r.rs.Read(b)
	if n > 0 {
		r.lastEOL = b[n-1] == '\n'
	}
	if err == nil {
		return n, nil
	}

	if err != io.EOF {
		return n, fmt.Errorf("read: %w", err)
	}

	_, err = r.rs.Seek(0, io.SeekStart)
	if err != nil {
		return n, fmt.Errorf("rewind: %w", err)
	}

	if !r.lastEOL && n < len(b) {
		b[n] = '\n'
		n++
		r.lastEOL = true
	}
	return n, nil
}

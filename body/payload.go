// Package body holds the byte sink and byte source used to move JSON
// payloads in and out of HTTP exchanges.
package body

import "io"

// Payload emits a fixed buffer. It reports io.EOF together with the read
// that reaches the end of the buffer, and on every read after that.
type Payload struct {
	data []byte
	off  int
}

func NewPayload(data []byte) *Payload {
	return &Payload{data: data}
}

func (p *Payload) Read(b []byte) (int, error) {
	if p.off >= len(p.data) {
		return 0, io.EOF
	}
	n := copy(b, p.data[p.off:])
	p.off += n
	if p.off == len(p.data) {
		return n, io.EOF
	}
	return n, nil
}

// Size is the total payload length, independent of the cursor. It is the
// request Content-Length.
func (p *Payload) Size() int64 { return int64(len(p.data)) }

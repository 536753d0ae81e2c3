package datasource

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/ozontech/typedhttp/datasource/decoder"
)

type DataSource interface {
	Fetch() (*Request, error)
}

// Request is a decoded request line. Release hands it back to its source;
// the request must not be used after that.
type Request struct {
	decoder.Data
	line    []byte
	release func(*Request)
}

func (r *Request) Release() {
	if r.release != nil {
		r.release(r)
	}
}

// AllowedHeader reports whether a header from a requests file may be sent
// as is. Framing headers belong to the transport.
func AllowedHeader(name string) bool {
	switch name {
	case "Host", "Content-Length", "Transfer-Encoding", "Connection", "Te", "Upgrade":
		return false
	}
	return true
}

// readLine reads the next non blank line into buf. A last line without a
// trailing newline is still returned.
func readLine(br *bufio.Reader, buf []byte) ([]byte, error) {
	for {
		buf = buf[:0]
		for {
			chunk, err := br.ReadSlice('\n')
			buf = append(buf, chunk...)
			if errors.Is(err, bufio.ErrBufferFull) {
				continue
			}
			if err != nil {
				if errors.Is(err, io.EOF) && !blank(buf) {
					return buf, nil
				}
				return buf, err
			}
			break
		}
		if !blank(buf) {
			return buf, nil
		}
	}
}

func blank(b []byte) bool { return len(bytes.TrimSpace(b)) == 0 }

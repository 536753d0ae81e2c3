package datasource

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/ozontech/typedhttp/datasource/decoder"
	"github.com/ozontech/typedhttp/utils/pool"
)

// FileDataSource decodes requests as they are read. Wrap the file with a
// CyclicReader to replay it endlessly.
type FileDataSource struct {
	r       *bufio.Reader
	decoder *decoder.Decoder
	pool    *pool.SlicePool[*Request]
	mu      sync.Mutex
}

func NewFileDataSource(r io.Reader) *FileDataSource {
	ds := &FileDataSource{
		r:       bufio.NewReaderSize(r, 64<<10),
		decoder: decoder.NewDecoder(),
	}
	ds.pool = pool.NewSlicePoolSize[*Request](100).WithReset(func(r *Request) { r.Reset() })
	return ds
}

func (ds *FileDataSource) Fetch() (*Request, error) {
	r := ds.pool.AcquireOrNew(func() *Request {
		return &Request{release: ds.pool.Release}
	})

	var err error
	ds.mu.Lock()
	r.line, err = readLine(ds.r, r.line)
	ds.mu.Unlock()
	if err != nil {
		ds.pool.Release(r)
		return nil, fmt.Errorf("read next request: %w", err)
	}

	if err = ds.decoder.Unmarshal(&r.Data, r.line); err != nil {
		ds.pool.Release(r)
		return nil, err
	}
	return r, nil
}

package datasource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ozontech/typedhttp/datasource/decoder"
	"github.com/ozontech/typedhttp/utils/pool"
)

var ErrEmptyFile = errors.New("request file is empty")

// InmemDataSource decodes the whole file once and then cycles over it.
// Fetched requests share headers and bodies and must be treated as read only.
type InmemDataSource struct {
	r       io.Reader
	decoder *decoder.Decoder

	pool  *pool.SlicePool[*Request]
	i     atomic.Int64
	datas []decoder.Data
}

func NewInmemDataSource(r io.Reader) *InmemDataSource {
	return &InmemDataSource{
		r:       r,
		decoder: decoder.NewDecoder(),
		pool:    pool.NewSlicePoolSize[*Request](100),
	}
}

func (ds *InmemDataSource) Init() error {
	br := bufio.NewReader(ds.r)
	var line []byte
	var err error
	for {
		line, err = readLine(br, line)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("read next request: %w", err)
		}
		var data decoder.Data
		if err = ds.decoder.Unmarshal(&data, line); err != nil {
			return fmt.Errorf("request %d: %w", len(ds.datas)+1, err)
		}
		ds.datas = append(ds.datas, data)
	}
	if len(ds.datas) == 0 {
		return ErrEmptyFile
	}
	return nil
}

func (ds *InmemDataSource) Len() int { return len(ds.datas) }

func (ds *InmemDataSource) Fetch() (*Request, error) {
	if len(ds.datas) == 0 {
		return nil, ErrEmptyFile
	}
	r := ds.pool.AcquireOrNew(func() *Request {
		return &Request{release: ds.pool.Release}
	})

	i := ds.i.Add(1) - 1
	r.Data = ds.datas[i%int64(len(ds.datas))]
	return r, nil
}

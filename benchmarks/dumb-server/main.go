// dumb-server answers every request with a small JSON echo of it. It is the
// system under test for load runs of the typedhttp CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof" //nolint:gosec
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/ozontech/typedhttp/body"
	"github.com/ozontech/typedhttp/consts"
	"github.com/ozontech/typedhttp/jsonwire"
	"github.com/ozontech/typedhttp/utils/pool"
)

const (
	listenAddr = ":9090"
	debugAddr  = ":8080"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		//nolint:errcheck,gosec
		http.ListenAndServe(debugAddr, nil)
	}()

	if err := run(ctx, listenAddr); err != nil {
		fmt.Println("server exited: " + err.Error())
		os.Exit(1)
	}
}

type stats struct {
	bytesIN     atomic.Uint64
	bytesOUT    atomic.Uint64
	requestsIN  atomic.Uint64
	requestsOUT atomic.Uint64
}

func (s *stats) print() {
	if s.requestsIN.Load() == 0 {
		return
	}
	println(
		"bytesIN:", humanize.Bytes(s.bytesIN.Swap(0)),
		"bytesOUT:", humanize.Bytes(s.bytesOUT.Swap(0)),
		"requestsIN:", s.requestsIN.Swap(0),
		"requestsOUT:", s.requestsOUT.Swap(0),
	)
}

func run(ctx context.Context, addr string) error {
	st := new(stats)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(st),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	})
	g.Go(func() error {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case <-t.C:
				st.print()
			}
		}
	})
	return g.Wait()
}

// newHandler echoes method, path and the parsed JSON body. An unparsable
// body is answered with 400.
func newHandler(st *stats) http.Handler {
	collectors := pool.NewSlicePoolSize[*body.Collector](1024).WithReset((*body.Collector).Reset)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st.requestsIN.Add(1)
		c := collectors.AcquireOrNew(body.NewCollector)
		defer collectors.Release(c)

		if _, err := io.Copy(c, r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st.bytesIN.Add(uint64(c.Len()))

		echo := map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		}
		if c.Len() > 0 {
			v, err := jsonwire.Unmarshal(c.Collect())
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			echo["body"] = v
		}

		b, err := jsonwire.Marshal(echo)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set(consts.HeaderContentType, consts.ContentTypeJSON)
		n, _ := w.Write(b)
		st.bytesOUT.Add(uint64(n))
		st.requestsOUT.Add(1)
	})
}

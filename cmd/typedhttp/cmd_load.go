package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ozontech/typedhttp/client"
	"github.com/ozontech/typedhttp/codec"
	"github.com/ozontech/typedhttp/consts"
	"github.com/ozontech/typedhttp/datasource"
	"github.com/ozontech/typedhttp/exchange"
	"github.com/ozontech/typedhttp/report"
	"github.com/ozontech/typedhttp/report/multi"
	phoutReporter "github.com/ozontech/typedhttp/report/phout"
	supersimpleReporter "github.com/ozontech/typedhttp/report/supersimple"
	"github.com/ozontech/typedhttp/scheduler"
)

type RPSConst struct {
	Freq     float64       `arg:"" required:"" help:"Value req/s."`
	Duration time.Duration `help:"Limit duration (10s, 2h...)."`
}

func (r RPSConst) AfterApply(kongCtx *kong.Context) error {
	var sched scheduler.Scheduler
	sched, err := scheduler.NewConstant(r.Freq)
	if err != nil {
		return err
	}
	if r.Duration != 0 {
		sched = scheduler.NewDurationLimiter(sched, r.Duration)
	}
	kongCtx.BindTo(sched, (*scheduler.Scheduler)(nil))
	return nil
}

type RPSLine struct {
	From     float64       `arg:"" required:"" help:"Starting req/s."`
	To       float64       `arg:"" required:"" help:"Ending req/s."`
	Duration time.Duration `arg:"" required:"" help:"Duration (10s, 2h...)."`
}

func (r RPSLine) AfterApply(kongCtx *kong.Context) error {
	line, err := scheduler.NewLine(r.From, r.To, r.Duration)
	if err != nil {
		return err
	}
	kongCtx.BindTo(scheduler.NewDurationLimiter(line, r.Duration), (*scheduler.Scheduler)(nil))
	return nil
}

type RPSUnlimited struct {
	Duration time.Duration `help:"Limit duration (10s, 2h...)."`
	Count    uint64        `help:"Limit requests count"`
}

func (r RPSUnlimited) AfterApply(kongCtx *kong.Context) error {
	kongCtx.BindTo(r.scheduler(), (*scheduler.Scheduler)(nil))
	return nil
}

func (r RPSUnlimited) scheduler() scheduler.Scheduler {
	var sched scheduler.Scheduler = scheduler.Unlimited{}
	if r.Count != 0 {
		sched = scheduler.NewCountLimiter(sched, int64(r.Count))
	}
	if r.Duration != 0 {
		sched = scheduler.NewDurationLimiter(sched, r.Duration)
	}
	return sched
}

type RPS struct {
	Const     RPSConst     `cmd:"" group:"rps" help:"Const rps."`
	Line      RPSLine      `cmd:"" group:"rps" help:"Linear rps."`
	Unlimited RPSUnlimited `cmd:"" group:"rps" help:"Unlimited rps (default one)." default:""`
}

type LoadCommand struct {
	BaseURL       string   `required:"" help:"Base URL of the system under test." placeholder:"http://localhost:8080"`
	RequestsFile  *os.File `name:"requests" required:"" help:"File of JSON-lines requests."`
	InmemRequests bool     `name:"inmem" help:"Load whole requests file in memory."`

	Clients int           `default:"1" help:"Clients count. Every client keeps one request in flight."`
	Timeout time.Duration `default:"11s" help:"Request timeout."`
	Phout   string        `help:"Phout report file." type:"path"`

	Verbose bool `help:"Verbose output"`

	RPS

	out io.Writer `kong:"-"`
}

func (c *LoadCommand) Validate() error {
	if c.Clients < 1 {
		return errors.New("--clients must be positive")
	}
	return nil
}

func (c *LoadCommand) Run(ctx context.Context, sched scheduler.Scheduler) (err error) {
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = consts.DefaultTimeout
	}

	log := newLogger(c.Verbose)
	defer log.Sync() //nolint:errcheck

	var dataSource datasource.DataSource = datasource.NewFileDataSource(datasource.NewCyclicReader(c.RequestsFile))
	if c.InmemRequests {
		inmemDS := datasource.NewInmemDataSource(c.RequestsFile)
		if err = inmemDS.Init(); err != nil {
			return fmt.Errorf("inmem datasource init: %w", err)
		}
		log.Info("requests loaded", zap.Int("count", inmemDS.Len()))
		dataSource = inmemDS
	}

	var reporter report.Reporter = supersimpleReporter.New(out, timeout)
	if c.Phout != "" {
		f, createErr := os.Create(c.Phout)
		if createErr != nil {
			return fmt.Errorf("creating phout file(%s): %w", c.Phout, createErr)
		}
		defer multierr.AppendInvoke(&err, multierr.Close(f))
		reporter = multi.New(phoutReporter.New(f, timeout), reporter)
	}

	base, err := client.New(
		client.WithBaseURL(c.BaseURL),
		client.WithLogger(log),
		client.WithReporter(reporter),
		client.WithHeader(consts.HeaderUserAgent, consts.DefaultUserAgent),
	)
	if err != nil {
		return err
	}

	workers := make([]*worker, c.Clients)
	for i := range workers {
		workers[i], err = newWorker(base, exchange.NewAgent(), timeout)
		if err != nil {
			return err
		}
	}

	var reportG errgroup.Group
	reportG.Go(reporter.Run)

	g, ctx := errgroup.WithContext(ctx)
	var n atomic.Int64
	begin := time.Now()
	for _, w := range workers {
		g.Go(func() error {
			defer w.agent.CloseIdleConnections()
			for {
				at, ok := sched.Next(n.Add(1) - 1)
				if !ok {
					return nil
				}
				if wait := at - time.Since(begin); wait > 0 {
					select {
					case <-time.After(wait):
					case <-ctx.Done():
						return nil
					}
				}
				if ctx.Err() != nil {
					return nil
				}

				r, err := dataSource.Fetch()
				if err != nil {
					return err
				}
				err = w.do(ctx, r)
				r.Release()
				if err != nil {
					return err
				}
			}
		})
	}

	err = multierr.Combine(g.Wait(), reporter.Close(), reportG.Wait())
	memStats(log)
	return err
}

type worker struct {
	agent    *http.Transport
	plain    *client.Client
	withBody *client.Client
	timeout  time.Duration
}

func newWorker(base *client.Client, agent *http.Transport, timeout time.Duration) (*worker, error) {
	plain, err := base.With(client.WithAgent(agent))
	if err != nil {
		return nil, err
	}
	withBody, err := plain.With(client.WithRequestCodec(codec.Any()))
	if err != nil {
		return nil, err
	}
	return &worker{agent, plain, withBody, timeout}, nil
}

// do sends r. Transport failures and error statuses are only reported; a
// request that cannot be built stops the run.
func (w *worker) do(ctx context.Context, r *datasource.Request) error {
	opts := make([]client.CallOption, 0, len(r.Header)+2)
	opts = append(opts, client.Tag(r.Tag))
	for _, h := range r.Header {
		if datasource.AllowedHeader(h.Name) {
			opts = append(opts, client.Header(h.Name, h.Value))
		}
	}

	cl := w.plain
	if r.HasBody {
		cl = w.withBody
		opts = append(opts, client.Payload(r.Body))
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	_, err := cl.Do(ctx, r.Method, r.Path, opts...)
	var encodeErr *client.EncodeError
	if errors.Is(err, client.ErrConfiguration) || errors.As(err, &encodeErr) {
		return fmt.Errorf("request %s %s: %w", r.Method, r.Path, err)
	}
	return nil
}

func memStats(log *zap.Logger) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Info(
		"memory stats",
		zap.String("alloc", humanize.IBytes(m.Alloc)),
		zap.String("total-alloc", humanize.IBytes(m.TotalAlloc)),
		zap.String("sys", humanize.IBytes(m.Sys)),
		zap.String("heap-inuse", humanize.IBytes(m.HeapInuse)),
		zap.String("stack-inuse", humanize.IBytes(m.StackInuse)),
		zap.Uint64("heap-objects", m.HeapObjects),
		zap.Uint32("gc", m.NumGC),
	)
}

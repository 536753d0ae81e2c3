package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ozontech/typedhttp/client"
	"github.com/ozontech/typedhttp/codec"
	"github.com/ozontech/typedhttp/exchange"
	"github.com/ozontech/typedhttp/jsonwire"
	"github.com/ozontech/typedhttp/tracing"
)

type CallCommand struct {
	Method string            `arg:"" required:"" help:"Request method (GET, POST...)."`
	URL    string            `arg:"" required:"" help:"Absolute request URL."`
	Header map[string]string `short:"H" help:"Request headers (k=v;k2=v2)."`
	Data   string            `short:"d" help:"JSON request payload."`
	Decode bool              `help:"Decode and print the response payload."`

	Timeout time.Duration `default:"11s" help:"Request timeout."`
	Trace   bool          `help:"Print the request span."`
	Verbose bool          `help:"Verbose output"`

	out io.Writer `kong:"-"`
}

func (c *CallCommand) Run(ctx context.Context) error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	log := newLogger(c.Verbose)
	defer log.Sync() //nolint:errcheck

	opts := []client.Option{client.WithLogger(log)}
	var callOpts []client.CallOption
	for k, v := range c.Header {
		callOpts = append(callOpts, client.Header(k, v))
	}
	if c.Data != "" {
		payload, err := jsonwire.Unmarshal([]byte(c.Data))
		if err != nil {
			return fmt.Errorf("parsing --data: %w", err)
		}
		opts = append(opts, client.WithRequestCodec(codec.Any()))
		callOpts = append(callOpts, client.Payload(payload))
	}
	if c.Decode {
		opts = append(opts, client.WithResponseCodec(codec.Any()))
	}
	var rec *tracing.Recorder
	if c.Trace {
		rec = tracing.NewRecorder()
		opts = append(opts, client.WithTracer(rec))
	}

	cl, err := client.New(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	resp, err := cl.Do(ctx, strings.ToUpper(c.Method), c.URL, callOpts...)
	if rec != nil {
		printSpans(out, rec)
	}
	if err != nil {
		switch kind := exchange.Classify(err); kind {
		case exchange.KindNone, exchange.KindOther:
			return err
		default:
			return fmt.Errorf("%s: %w", kind, err)
		}
	}

	fmt.Fprintf(out, "HTTP %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	for _, k := range slices.Sorted(maps.Keys(resp.Header)) {
		for _, v := range resp.Header[k] {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
	if !c.Decode {
		return nil
	}

	b, err := jsonwire.Marshal(resp.Payload)
	if err != nil {
		return fmt.Errorf("printing payload: %w", err)
	}
	fmt.Fprintf(out, "\n%s\n", b)
	return nil
}

func printSpans(w io.Writer, rec *tracing.Recorder) {
	for _, s := range rec.Spans() {
		tags := s.Tags()
		fmt.Fprintf(w, "span %q", s.Name)
		for _, k := range slices.Sorted(maps.Keys(tags)) {
			fmt.Fprintf(w, " %s=%v", k, tags[k])
		}
		fmt.Fprintln(w)
	}
}

package main

import (
	"context"
	"net/http"
	_ "net/http/pprof" //nolint:gosec
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	mangokong "github.com/alecthomas/mango-kong"
	"go.uber.org/zap"
)

var CLI struct {
	Call        CallCommand       `cmd:"" help:"Send one request and print the response."`
	Load        LoadCommand       `cmd:"" help:"Starting load generation."`
	Man         mangokong.ManFlag `help:"Write man page." hidden:""`
	DebugServer string            `help:"Serve pprof on this address." placeholder:":8081"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(
		&CLI,
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Groups(map[string]string{
			"rps": `Rate flags:`,
		}),
		kong.ConfigureHelp(kong.HelpOptions{
			Tree:    true,
			Compact: true,
		}),
		kong.Description(`typed JSON over HTTP client and load generator

The call command sends a single request and prints the decoded response.
The load command replays a JSON-lines requests file against a base URL at a scheduled rate.
		`),
	)

	if CLI.DebugServer != "" {
		go func() {
			http.ListenAndServe(CLI.DebugServer, nil) //nolint:errcheck,gosec
		}()
	}

	err := kongCtx.Run()
	kongCtx.FatalIfErrorf(err)
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	return zap.Must(zap.NewDevelopment())
}

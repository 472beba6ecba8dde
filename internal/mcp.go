package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/centavo-app/centavo/internal/ledger"
	"github.com/centavo-app/centavo/internal/mcpserver"
	"github.com/centavo-app/centavo/internal/recurring"
	"github.com/centavo-app/centavo/internal/scheduler"
	"github.com/centavo-app/centavo/internal/store"
)

// RunMCP serves the store over stdio MCP instead of HTTP. Generation and
// debounced persistence run exactly as in server mode, so records created by
// an LLM client are durable.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Stdout carries the MCP transport; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	gw, err := newGateway(cfg)
	if err != nil {
		return fmt.Errorf("init gateway: %w", err)
	}
	if closer, ok := gw.(io.Closer); ok {
		defer closer.Close()
	}

	st := store.New(gw, logger)
	st.Load()

	runner := recurring.NewRunner(st, logger)
	sched := scheduler.New(st, gw, time.Duration(cfg.Autosave.Debounce), logger)
	svc := ledger.NewService(st, sched, logger)
	srv := mcpserver.New(svc)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runner.Run(gCtx)
	})
	g.Go(func() error {
		return sched.Run(gCtx)
	})
	g.Go(func() error {
		// ServeStdio returns when the client closes stdin; the final flush
		// happens in the scheduler's shutdown path.
		defer cancel()
		return srv.ServeStdio()
	})

	return g.Wait()
}

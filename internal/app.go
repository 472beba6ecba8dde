// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/centavo-app/centavo/internal/api"
	"github.com/centavo-app/centavo/internal/gateway"
	"github.com/centavo-app/centavo/internal/ledger"
	"github.com/centavo-app/centavo/internal/recurring"
	"github.com/centavo-app/centavo/internal/scheduler"
	"github.com/centavo-app/centavo/internal/sse"
	"github.com/centavo-app/centavo/internal/store"
)

// newGateway builds the configured persistence backend.
func newGateway(cfg *Config) (gateway.Provider, error) {
	switch cfg.Data.Backend {
	case BackendSQLite:
		return gateway.OpenSQLite(cfg.Data.Path)
	default:
		return gateway.NewCSV(cfg.Data.Path)
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_backend", cfg.Data.Backend),
		slog.String("data_path", cfg.Data.Path),
		slog.Duration("autosave_debounce", time.Duration(cfg.Autosave.Debounce)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the persistence gateway.
	gw, err := newGateway(cfg)
	if err != nil {
		return fmt.Errorf("init gateway: %w", err)
	}
	if closer, ok := gw.(io.Closer); ok {
		defer closer.Close()
	}

	// Build the store and load the durable set. Load failures leave an empty
	// store; the server still comes up.
	st := store.New(gw, logger)
	st.Load()

	runner := recurring.NewRunner(st, logger)
	sched := scheduler.New(st, gw, time.Duration(cfg.Autosave.Debounce), logger)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API service and router.
	svc := ledger.NewService(st, sched, logger)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	// Shutdown signals cancel the run context, which stops the runner, the
	// scheduler (with its final flush) and the watcher.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Bridge store events to SSE clients.
	g.Go(func() error {
		events := st.Subscribe()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case ev := <-events:
				switch ev.Kind {
				case store.KindCreated:
					broker.PublishRecordEvent("created", ev.ID)
				case store.KindUpdated:
					broker.PublishRecordEvent("updated", ev.ID)
				case store.KindDeleted:
					broker.PublishRecordEvent("deleted", ev.ID)
				}
			}
		}
	})

	// Recurring generation.
	g.Go(func() error {
		return runner.Run(gCtx)
	})

	// Debounced persistence.
	g.Go(func() error {
		return sched.Run(gCtx)
	})

	// Data file watcher (CSV backend only; the file is hand-editable).
	if csvGW, ok := gw.(*gateway.CSV); ok {
		g.Go(func() error {
			return store.WatchFile(gCtx, st, csvGW.Path(), csvGW, logger)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Stop the HTTP server once the run context ends.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rfpwatch/internal/cache"
	"rfpwatch/internal/events"
	"rfpwatch/internal/httpapi"
	"rfpwatch/internal/scheduler"
	"rfpwatch/internal/telemetry"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API and run scheduled ingestion.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	respCache, err := cache.New(cfg.Cache)
	if err != nil {
		return err
	}
	if respCache != nil {
		defer respCache.Close()
	}

	hub := events.NewHub()
	metrics := telemetry.NewMetrics()

	runner, err := newRunner(cfg, db, hub, metrics)
	if err != nil {
		return err
	}
	// Background runs finish before the store closes.
	defer runner.Wait()
	runner.OnReplaced = func() {
		if respCache == nil {
			return
		}
		if err := respCache.Purge(); err != nil {
			slog.Warn("cache purge failed", "err", err)
		}
	}

	if cfg.Ingest.Schedule != "" {
		cron := scheduler.New(ctx)
		if err := cron.Add(cfg.Ingest.Schedule, "ingest", runner.Task()); err != nil {
			return err
		}
		cron.Start()
		defer func() { <-cron.Stop().Done() }()
	}
	if cfg.Ingest.RunOnStart {
		runner.Start(ctx)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.App.Port),
		Handler: httpapi.NewHandler(httpapi.Deps{
			Store:   db,
			Hub:     hub,
			Cache:   respCache,
			Ingest:  runner,
			Metrics: metrics,
			RunCtx:  ctx,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// SSE streams end with ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	hub.Close()
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

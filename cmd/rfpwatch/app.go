package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"rfpwatch/internal/config"
	"rfpwatch/internal/events"
	"rfpwatch/internal/ingest"
	"rfpwatch/internal/scrape"
	"rfpwatch/internal/scrape/util"
	"rfpwatch/internal/secrets"
	"rfpwatch/internal/store"
	"rfpwatch/internal/telemetry"
)

// loadConfig reads and validates the config, then installs the logger it
// describes. Warnings are logged once the logger exists.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	if err := v.Err(); err != nil {
		return cfg, err
	}
	if _, err := telemetry.SetupLogger(cfg.Logging, os.Stderr); err != nil {
		return cfg, err
	}
	for _, w := range v.Warnings {
		slog.Warn("config", "warning", w)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (*store.DB, error) {
	db, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Info("store ready", "driver", db.Driver())
	return db, nil
}

func newRunner(cfg config.Config, db ingest.Store, hub *events.Hub, m *telemetry.Metrics) (*ingest.Runner, error) {
	limiter := util.NewHostLimiter(cfg.Ingest.RatePerSecond, cfg.Ingest.Burst)
	fetchers, err := scrape.BuildFetchers(cfg.Sources, limiter, func(src config.Source) (string, error) {
		return secrets.SourceKey(src, os.Getenv)
	})
	if err != nil {
		return nil, err
	}
	return &ingest.Runner{
		Pipeline: scrape.Pipeline{
			Fetchers:      fetchers,
			SourceTimeout: cfg.Ingest.SourceTimeout(),
			Workers:       cfg.Ingest.Workers,
			Metrics:       m,
		},
		Store:    db,
		LockPath: cfg.Ingest.LockFile,
		Hub:      hub,
		Metrics:  m,
	}, nil
}

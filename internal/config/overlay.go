package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// LocalPath returns the overlay file for path: config.yml -> config.local.yml.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func overlayLocal(cfg *Config, path string) error {
	local := LocalPath(path)
	b, err := os.ReadFile(local)
	if err != nil {
		// no overlay is the normal case
		return nil
	}

	var override Config
	if err := yaml.Unmarshal(b, &override); err != nil {
		return fmt.Errorf("parse %s: %w", local, err)
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge %s: %w", local, err)
	}
	slog.Info("merging config with local overrides", "local", local)
	return nil
}

// applyEnv lets the environment override file values. Per-source API keys
// are not read here; they are resolved when adapters are built.
func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("DATABASE_URL")); v != "" {
		cfg.Database.URL = v
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT must be an integer, got %q", v)
		}
		cfg.App.Port = p
	}
	if v := strings.TrimSpace(getenv("RFPWATCH_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(getenv("CACHE_ADDRESS")); v != "" {
		cfg.Cache.Address = v
		if cfg.Cache.Backend == "" || cfg.Cache.Backend == CacheMemory {
			cfg.Cache.Backend = CacheBadger
		}
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(getenv("LOG_FORMAT")); v != "" {
		cfg.Logging.Format = v
	}
	if v := strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := strings.TrimSpace(getenv("INGEST_SCHEDULE")); v != "" {
		cfg.Ingest.Schedule = v
	}
	return nil
}

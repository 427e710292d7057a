package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds every problem into one error, or nil.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + joinLines(v.Errors))
}

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	if strings.TrimSpace(out.Database.URL) == "" {
		res.addErr("database.url is required (set DATABASE_URL)")
	}
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	switch strings.ToLower(out.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		res.addErr("logging.level must be debug|info|warn|error, got %q", out.Logging.Level)
	}
	switch out.Logging.Format {
	case "text", "json":
	default:
		res.addErr("logging.format must be text|json, got %q", out.Logging.Format)
	}

	switch out.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheBadger:
		if strings.TrimSpace(out.Cache.Address) == "" {
			res.addErr("cache.address is required when cache.backend=badger (set CACHE_ADDRESS)")
		}
	default:
		res.addErr("cache.backend must be memory|badger|none, got %q", out.Cache.Backend)
	}
	if out.Cache.TTLSeconds <= 0 {
		res.addErr("cache.ttl_seconds must be > 0")
	}

	if out.Ingest.Workers <= 0 {
		res.addErr("ingest.workers must be > 0")
	}
	if out.Ingest.SourceTimeoutSeconds <= 0 {
		res.addErr("ingest.source_timeout_seconds must be > 0")
	}
	if out.Ingest.RatePerSecond <= 0 {
		res.addErr("ingest.rate_per_second must be > 0")
	}
	if out.Ingest.Schedule != "" {
		if _, err := cron.ParseStandard(out.Ingest.Schedule); err != nil {
			res.addErr("ingest.schedule: %v", err)
		}
	}

	names := map[string]bool{}
	enabled := 0
	for i := range out.Sources {
		s := &out.Sources[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		s.Keywords = trimList(s.Keywords)

		label := fmt.Sprintf("sources[%d]", i)
		if s.Name == "" {
			res.addErr("%s.name is required", label)
		} else {
			label = fmt.Sprintf("sources[%s]", s.Name)
			if names[s.Name] {
				res.addErr("%s: duplicate source name", label)
			}
			names[s.Name] = true
		}

		if u, err := url.Parse(s.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			res.addErr("%s.url must be an absolute http(s) URL", label)
		}
		if s.TimeoutSeconds < 0 {
			res.addErr("%s.timeout_seconds must be >= 0", label)
		}

		switch s.Type {
		case SourceFeed:
		case SourceAPI:
			if s.APIKeyEnv == "" && s.RequireKey {
				res.addWarn("%s requires a key but has no api_key_env; only the keychain will be checked", label)
			}
		case SourceHTML:
			if strings.TrimSpace(s.Selectors.Item) == "" {
				res.addErr("%s.selectors.item is required for html sources", label)
			}
		default:
			res.addErr("%s.type must be feed|api|html, got %q", label, s.Type)
		}

		if !s.Disabled {
			enabled++
		}
	}
	if enabled == 0 {
		res.addWarn("no sources enabled; ingestion will produce nothing")
	}

	return out, res
}

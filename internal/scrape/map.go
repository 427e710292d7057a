package scrape

import (
	"errors"
	"fmt"
	"log/slog"

	"rfpwatch/internal/config"
	"rfpwatch/internal/scrape/api"
	"rfpwatch/internal/scrape/feed"
	"rfpwatch/internal/scrape/html"
	"rfpwatch/internal/scrape/types"
	"rfpwatch/internal/scrape/util"
)

// KeyFunc resolves the API key for a source.
type KeyFunc func(src config.Source) (string, error)

// BuildFetchers turns the configured sources into adapters, in order.
// Disabled sources are skipped. An api source whose key cannot be resolved
// is skipped with a warning, or fails the build when it sets require_key.
func BuildFetchers(sources []config.Source, limiter *util.HostLimiter, keyFor KeyFunc) ([]types.Fetcher, error) {
	var out []types.Fetcher
	var errs []error

	for _, s := range sources {
		if s.Disabled {
			continue
		}
		defaults := types.SourceDefaults{Region: s.Region, Sector: s.Sector}

		switch s.Type {
		case config.SourceFeed:
			out = append(out, feed.New(feed.Config{
				Name:               s.Name,
				URL:                s.URL,
				Keywords:           s.Keywords,
				Timeout:            s.Timeout(),
				InsecureSkipVerify: s.InsecureSkipVerify,
				Defaults:           defaults,
			}, limiter))

		case config.SourceAPI:
			var key string
			if keyFor != nil {
				k, err := keyFor(s)
				if err != nil {
					if s.RequireKey {
						errs = append(errs, fmt.Errorf("source %s: %w", s.Name, err))
						continue
					}
					slog.Warn("skipping source without api key", "source", s.Name, "env", s.APIKeyEnv)
					continue
				}
				key = k
			}
			out = append(out, api.New(api.Config{
				Name:               s.Name,
				URL:                s.URL,
				APIKey:             key,
				Params:             s.Params,
				Timeout:            s.Timeout(),
				InsecureSkipVerify: s.InsecureSkipVerify,
				Defaults:           defaults,
			}, limiter))

		case config.SourceHTML:
			out = append(out, html.New(html.Config{
				Name: s.Name,
				URL:  s.URL,
				Selectors: html.Selectors{
					Item:         s.Selectors.Item,
					Organization: s.Selectors.Organization,
					Region:       s.Selectors.Region,
					Sector:       s.Selectors.Sector,
					Link:         s.Selectors.Link,
				},
				Timeout:            s.Timeout(),
				InsecureSkipVerify: s.InsecureSkipVerify,
				Defaults:           defaults,
			}, limiter))

		default:
			errs = append(errs, fmt.Errorf("source %s: unknown type %q", s.Name, s.Type))
		}
	}
	return out, errors.Join(errs...)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"rfpwatch/internal/domain"
	"rfpwatch/internal/scrape/types"
	"rfpwatch/internal/scrape/util"

	"github.com/go-resty/resty/v2"
)

var ErrNoAPIKey = errors.New("api key not configured")

type Config struct {
	Name               string
	URL                string
	APIKey             string
	Params             map[string]string
	Timeout            time.Duration
	InsecureSkipVerify bool
	Defaults           types.SourceDefaults
}

// Fetcher pulls tenders from an authenticated JSON endpoint shaped like
// {"tenders":[{"authority":..,"province":..,"sector":..,"link":..,"deadline":..,"budget":..}]}.
type Fetcher struct {
	cfg     Config
	client  *resty.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.NewWithClient(util.NewHTTPClient(cfg.Timeout, cfg.InsecureSkipVerify))
	client.SetHeader("User-Agent", util.UserAgent)
	client.SetHeader("Accept", "application/json")
	return &Fetcher{cfg: cfg, client: client, limiter: limiter}
}

func (f *Fetcher) Name() string { return f.cfg.Name }

type tendersPayload struct {
	Tenders []tender `json:"tenders"`
}

type tender struct {
	Authority flexString `json:"authority"`
	Province  flexString `json:"province"`
	Sector    flexString `json:"sector"`
	Link      flexString `json:"link"`
	Deadline  flexString `json:"deadline"`
	Budget    flexString `json:"budget"`
}

// flexString accepts a JSON string, number, or null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawFragment, error) {
	if strings.TrimSpace(f.cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", f.cfg.Name, ErrNoAPIKey)
	}
	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, f.cfg.URL); err != nil {
			return nil, err
		}
	}

	res, err := f.client.R().
		SetContext(ctx).
		SetAuthToken(f.cfg.APIKey).
		SetQueryParams(f.cfg.Params).
		Get(f.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%s get: %w", f.cfg.Name, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%s status %d", f.cfg.Name, res.StatusCode())
	}

	var payload tendersPayload
	if err := json.Unmarshal(res.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%s decode: %w", f.cfg.Name, err)
	}

	out := make([]domain.RawFragment, 0, len(payload.Tenders))
	for _, t := range payload.Tenders {
		frag := domain.RawFragment{
			Source:       f.cfg.Name,
			Organization: string(t.Authority),
			Region:       string(t.Province),
			Sector:       string(t.Sector),
			Link:         string(t.Link),
			Deadline:     string(t.Deadline),
			Budget:       string(t.Budget),
		}
		f.cfg.Defaults.Apply(&frag)
		out = append(out, frag)
	}
	return out, nil
}

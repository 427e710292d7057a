package types

import (
	"context"
	"strings"
	"time"

	"rfpwatch/internal/domain"
)

// Fetcher is implemented by every source adapter. Fetch makes at most one
// attempt; any failure is returned and the caller treats the source as
// having produced nothing.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawFragment, error)
}

// SourceReport is the per-source outcome of one pipeline run.
type SourceReport struct {
	Name     string        `json:"name"`
	Fetched  int           `json:"fetched"`
	Kept     int           `json:"kept"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

func (r SourceReport) OK() bool { return r.Err == nil }

// SourceDefaults fills region/sector for sources that carry no such field.
type SourceDefaults struct {
	Region string
	Sector string
}

const Unknown = "Unknown"

// Apply fills empty region/sector with the source's defaults.
func (d SourceDefaults) Apply(f *domain.RawFragment) {
	if strings.TrimSpace(f.Region) == "" {
		f.Region = orUnknown(d.Region)
	}
	if strings.TrimSpace(f.Sector) == "" {
		f.Sector = orUnknown(d.Sector)
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}

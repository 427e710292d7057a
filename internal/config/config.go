package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SourceFeed = "feed"
	SourceAPI  = "api"
	SourceHTML = "html"

	CacheMemory = "memory"
	CacheBadger = "badger"
	CacheNone   = "none"
)

type Selectors struct {
	Item         string `yaml:"item"`
	Organization string `yaml:"organization"`
	Region       string `yaml:"region,omitempty"`
	Sector       string `yaml:"sector"`
	Link         string `yaml:"link"`
}

// Source configures one adapter. Type picks the variant.
type Source struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Disabled bool   `yaml:"disabled,omitempty"`
	URL      string `yaml:"url"`

	// Used when the source carries no region/sector of its own.
	Region string `yaml:"region,omitempty"`
	Sector string `yaml:"sector,omitempty"`

	Keywords []string `yaml:"keywords,omitempty"`

	APIKeyEnv  string            `yaml:"api_key_env,omitempty"`
	RequireKey bool              `yaml:"require_key,omitempty"`
	Params     map[string]string `yaml:"params,omitempty"`

	Selectors Selectors `yaml:"selectors,omitempty"`

	InsecureSkipVerify bool `yaml:"insecure_skip_verify,omitempty"`
	TimeoutSeconds     int  `yaml:"timeout_seconds,omitempty"`
}

type AppConfig struct {
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type CacheConfig struct {
	Backend    string `yaml:"backend"`
	Address    string `yaml:"address,omitempty"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Size       int    `yaml:"size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	ServiceName  string `yaml:"service_name"`
}

type IngestConfig struct {
	Schedule             string  `yaml:"schedule,omitempty"`
	RunOnStart           bool    `yaml:"run_on_start,omitempty"`
	Workers              int     `yaml:"workers"`
	SourceTimeoutSeconds int     `yaml:"source_timeout_seconds"`
	LockFile             string  `yaml:"lock_file"`
	RatePerSecond        float64 `yaml:"rate_per_second"`
	Burst                int     `yaml:"burst"`
}

type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Sources   []Source        `yaml:"sources"`
}

func (c IngestConfig) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (s Source) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Load reads path, merges its ".local" sibling over it, applies environment
// overrides and fills defaults. A missing file is not an error. The result
// still needs NormalizeAndValidate.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		if len(b) > 0 {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, err
			}
		}
		if err := overlayLocal(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 5000
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "."
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheMemory
		if cfg.Cache.Address != "" {
			cfg.Cache.Backend = CacheBadger
		}
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 128
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "rfpwatch"
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 4
	}
	if cfg.Ingest.SourceTimeoutSeconds == 0 {
		cfg.Ingest.SourceTimeoutSeconds = 10
	}
	if cfg.Ingest.LockFile == "" {
		cfg.Ingest.LockFile = filepath.Join(cfg.App.DataDir, "rfpwatch.lock")
	}
	if cfg.Ingest.RatePerSecond == 0 {
		cfg.Ingest.RatePerSecond = 1
	}
	if cfg.Ingest.Burst == 0 {
		cfg.Ingest.Burst = 2
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}
}

// Default is the configuration used when no file is present.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

func DefaultSources() []Source {
	return []Source{
		{
			Name:      "tendersontime",
			Type:      SourceAPI,
			URL:       "https://www.tendersontime.com/tenders/api",
			APIKeyEnv: "TENDERSONTIME_API_KEY",
			Params:    map[string]string{"date": "today"},
		},
		{
			Name:     "rfpmart",
			Type:     SourceFeed,
			URL:      "http://feeds.feedburner.com/RFPMart",
			Keywords: []string{"risk", "compliance", "audit", "cybersecurity"},
		},
		{
			Name: "rfpdb",
			Type: SourceHTML,
			URL:  "https://www.rfpdb.com/view/all",
			Selectors: Selectors{
				Item:         "div.rfp-item",
				Organization: "div.organization",
				Sector:       "div.category",
				Link:         "a",
			},
			InsecureSkipVerify: true,
		},
		{
			Name: "findrfp",
			Type: SourceHTML,
			URL:  "https://www.findrfp.com/service/search.aspx?keywords=risk+consulting",
			Selectors: Selectors{
				Item:         "div.rfp-listing",
				Organization: "div.buyer-org",
				Sector:       "div.sector",
				Link:         "a.details",
			},
			InsecureSkipVerify: true,
		},
	}
}

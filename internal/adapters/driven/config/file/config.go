package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the parsed configuration file.
type Config struct {
	// DataDir holds the SQLite database. Defaults to ~/.sercha-ingest/data.
	DataDir   string          `toml:"data_dir"`
	Storage   StorageConfig   `toml:"storage"`
	Twitter   TwitterConfig   `toml:"twitter"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Workers   []WorkerConfig  `toml:"workers"`

	path string
}

// StorageConfig selects the storage backends.
type StorageConfig struct {
	Backend string `toml:"backend"`

	// Redis, when set, replaces the metadata store of the backend.
	Redis *RedisConfig `toml:"redis"`
}

// RedisConfig configures the Redis metadata store.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// TwitterConfig holds the Twitter API credentials and client settings.
type TwitterConfig struct {
	BaseURL        string   `toml:"base_url"`
	TokenURL       string   `toml:"token_url"`
	BearerToken    string   `toml:"bearer_token"`
	ConsumerKey    string   `toml:"consumer_key"`
	ConsumerSecret string   `toml:"consumer_secret"`
	Rate           float64  `toml:"rate"`
	Burst          int      `toml:"burst"`
	Timeout        Duration `toml:"timeout"`
}

// HasCredentials reports whether a bearer token or consumer pair is set.
func (c TwitterConfig) HasCredentials() bool {
	return c.BearerToken != "" || (c.ConsumerKey != "" && c.ConsumerSecret != "")
}

// SchedulerConfig configures the scheduler.
type SchedulerConfig struct {
	Enabled          *bool    `toml:"enabled"`
	Tick             Duration `toml:"tick"`
	DefaultInterval  Duration `toml:"default_interval"`
	HistoryRetention int      `toml:"history_retention"`
}

// WorkerConfig is one [[workers]] entry.
type WorkerConfig struct {
	Type            string   `toml:"type"`
	ScreenName      string   `toml:"screen_name"`
	Interval        Duration `toml:"interval"`
	Enabled         *bool    `toml:"enabled"`
	MediaKinds      []string `toml:"media_kinds"`
	IncludeRetweets bool     `toml:"include_retweets"`
	PageSize        int      `toml:"page_size"`
}

// Duration is a time.Duration written as a Go duration string, e.g. "15m".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", domain.ErrInvalidInput, string(text))
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultPath returns ~/.sercha-ingest/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".sercha-ingest", "config.toml"), nil
}

// Load reads and validates the configuration file at path.
// If path is empty the default path is used. A missing file yields the
// defaults with no workers.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file yet - that's fine, start with defaults
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, path, err)
		}
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyDefaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".sercha-ingest", "data")
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	for i := range c.Workers {
		if c.Workers[i].Type == "" {
			c.Workers[i].Type = domain.WorkerTypeTwitterImage
		}
	}
	return nil
}

// Validate checks the configuration for inconsistent or missing values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, c.Storage.Backend)
	}
	if c.Storage.Redis != nil && c.Storage.Redis.Addr == "" {
		return fmt.Errorf("%w: storage.redis.addr is required", domain.ErrInvalidInput)
	}
	if c.Twitter.Rate < 0 || c.Twitter.Burst < 0 {
		return fmt.Errorf("%w: twitter rate and burst must not be negative", domain.ErrInvalidInput)
	}
	if c.Scheduler.Tick < 0 || c.Scheduler.DefaultInterval < 0 || c.Scheduler.HistoryRetention < 0 {
		return fmt.Errorf("%w: scheduler values must not be negative", domain.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(c.Workers))
	for i, w := range c.Workers {
		spec := w.spec()
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("workers[%d]: %w", i, err)
		}
		if seen[spec.WorkerID()] {
			return fmt.Errorf("%w: workers[%d]: duplicate worker %s", domain.ErrInvalidInput, i, spec.WorkerID())
		}
		seen[spec.WorkerID()] = true

		if w.Type != domain.WorkerTypeTwitterImage {
			return fmt.Errorf("%w: workers[%d]: %s", domain.ErrUnsupportedType, i, w.Type)
		}
		for _, kind := range w.MediaKinds {
			switch domain.MediaKind(kind) {
			case domain.MediaPhoto, domain.MediaVideo, domain.MediaAnimatedGIF:
			default:
				return fmt.Errorf("%w: workers[%d]: unknown media kind %q", domain.ErrInvalidInput, i, kind)
			}
		}
		if !c.Twitter.HasCredentials() {
			return fmt.Errorf("%w: twitter.bearer_token or twitter.consumer_key and consumer_secret are required",
				domain.ErrInvalidInput)
		}
	}
	return nil
}

// WorkerSpecs returns the configured workers.
func (c *Config) WorkerSpecs() []domain.WorkerSpec {
	specs := make([]domain.WorkerSpec, 0, len(c.Workers))
	for _, w := range c.Workers {
		specs = append(specs, w.spec())
	}
	return specs
}

// SchedulerSettings returns the scheduler configuration with defaults applied.
func (c *Config) SchedulerSettings() domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	if c.Scheduler.Enabled != nil {
		cfg.Enabled = *c.Scheduler.Enabled
	}
	if c.Scheduler.Tick > 0 {
		cfg.Tick = c.Scheduler.Tick.Std()
	}
	if c.Scheduler.DefaultInterval > 0 {
		cfg.DefaultInterval = c.Scheduler.DefaultInterval.Std()
	}
	if c.Scheduler.HistoryRetention > 0 {
		cfg.HistoryRetention = c.Scheduler.HistoryRetention
	}
	return cfg
}

func (w WorkerConfig) spec() domain.WorkerSpec {
	enabled := true
	if w.Enabled != nil {
		enabled = *w.Enabled
	}

	options := map[string]string{
		domain.OptionIncludeRetweets: strconv.FormatBool(w.IncludeRetweets),
	}
	if len(w.MediaKinds) > 0 {
		options[domain.OptionMediaKinds] = strings.Join(w.MediaKinds, ",")
	}

	return domain.WorkerSpec{
		Type:     w.Type,
		Identity: domain.Identity(strings.TrimPrefix(strings.TrimSpace(w.ScreenName), "@")),
		Enabled:  enabled,
		Interval: w.Interval.Std(),
		PageSize: w.PageSize,
		Options:  options,
	}
}

package twitter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

const (
	// DefaultBaseURL is the REST API root.
	DefaultBaseURL = "https://api.twitter.com"

	// DefaultTokenPath is the app-only token endpoint, relative to the base URL.
	DefaultTokenPath = "/oauth2/token"
)

// Config holds the credentials and client settings shared by every worker.
type Config struct {
	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// TokenURL overrides BaseURL + DefaultTokenPath.
	TokenURL string

	// BearerToken is a pre-issued app-only token. It takes precedence over
	// the consumer key pair.
	BearerToken string

	// ConsumerKey and ConsumerSecret obtain a token via client credentials.
	ConsumerKey    string
	ConsumerSecret string

	// Rate is the proactive request rate per second. Zero means ProactiveRate.
	Rate float64

	// Burst is the token bucket burst. Zero means ProactiveBurst.
	Burst int

	// Timeout is the HTTP request timeout. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Validate checks that a credential is present.
func (c Config) Validate() error {
	if c.BearerToken == "" && (c.ConsumerKey == "" || c.ConsumerSecret == "") {
		return fmt.Errorf("%w: bearer token or consumer key and secret required", ErrInvalidConfig)
	}
	return nil
}

func (c Config) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c Config) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return c.baseURL() + DefaultTokenPath
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// ExtractorConfig holds the parsed media options of one worker.
type ExtractorConfig struct {
	// Kinds lists the media kinds to keep.
	// Default: photo, video and animated_gif
	Kinds []domain.MediaKind

	// IncludeRetweets extracts media from retweeted statuses.
	// Default: false
	IncludeRetweets bool
}

// AllMediaKinds returns every media kind the extractor understands.
func AllMediaKinds() []domain.MediaKind {
	return []domain.MediaKind{domain.MediaPhoto, domain.MediaVideo, domain.MediaAnimatedGIF}
}

// ParseExtractorConfig parses a worker's options into an ExtractorConfig.
func ParseExtractorConfig(spec domain.WorkerSpec) (*ExtractorConfig, error) {
	cfg := &ExtractorConfig{Kinds: AllMediaKinds()}

	if kinds, ok := spec.Options[domain.OptionMediaKinds]; ok && kinds != "" {
		parsed, err := parseKinds(kinds)
		if err != nil {
			return nil, err
		}
		cfg.Kinds = parsed
	}

	if v, ok := spec.Options[domain.OptionIncludeRetweets]; ok && v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, domain.OptionIncludeRetweets)
		}
		cfg.IncludeRetweets = include
	}

	return cfg, nil
}

// HasKind checks if a media kind is enabled.
func (c *ExtractorConfig) HasKind(kind domain.MediaKind) bool {
	for _, k := range c.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func parseKinds(s string) ([]domain.MediaKind, error) {
	parts := strings.Split(s, ",")
	kinds := make([]domain.MediaKind, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		kind := domain.MediaKind(part)
		switch kind {
		case domain.MediaPhoto, domain.MediaVideo, domain.MediaAnimatedGIF:
			kinds = append(kinds, kind)
		default:
			return nil, fmt.Errorf("%w: unknown media kind %q", domain.ErrInvalidInput, part)
		}
	}
	if len(kinds) == 0 {
		return AllMediaKinds(), nil
	}
	return kinds, nil
}

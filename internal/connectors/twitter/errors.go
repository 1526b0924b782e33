package twitter

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// Twitter API v1.1 error codes the connector classifies.
const (
	CodeNoData          = 8
	CodePageNotFound    = 34
	CodeUserNotFound    = 50
	CodeUserSuspended   = 63
	CodeRateLimited     = 88
	CodeBlocked         = 136
	CodeStatusNotFound  = 144
	CodeStatusProtected = 179
)

// ErrInvalidConfig indicates the client configuration is incomplete.
var ErrInvalidConfig = errors.New("twitter: invalid configuration")

// APIError represents a Twitter API error response.
type APIError struct {
	StatusCode int
	Codes      []int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if len(e.Codes) > 0 {
		return fmt.Sprintf("twitter: API error %d (codes %v): %s (URL: %s)", e.StatusCode, e.Codes, e.Message, e.URL)
	}
	return fmt.Sprintf("twitter: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap maps the response onto a domain error.
func (e *APIError) Unwrap() error {
	if e.unauthorized() {
		return domain.ErrUnauthorized
	}
	return domain.ErrUpstream
}

// HasCode reports whether the response carried code.
func (e *APIError) HasCode(code int) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}

func (e *APIError) unauthorized() bool {
	if e.StatusCode == http.StatusUnauthorized {
		return true
	}
	for _, code := range []int{CodeUserNotFound, CodeUserSuspended, CodeBlocked, CodeStatusProtected} {
		if e.HasCode(code) {
			return true
		}
	}
	return false
}

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("twitter: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// Unwrap returns domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// IsNotFound checks if the error indicates a status or page does not exist.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound ||
		apiErr.HasCode(CodePageNotFound) ||
		apiErr.HasCode(CodeStatusNotFound) ||
		apiErr.HasCode(CodeNoData)
}

// IsForbiddenStatus checks if the error indicates a status exists but may not be viewed.
func IsForbiddenStatus(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.HasCode(CodeStatusProtected)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

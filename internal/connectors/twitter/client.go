package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10

	timelinePath = "/1.1/statuses/user_timeline.json"
	showPath     = "/1.1/statuses/show.json"
)

// Client is a v1.1 REST client authenticated with an app-only token.
type Client struct {
	http        *http.Client
	tokens      oauth2.TokenSource
	baseURL     string
	rateLimiter *RateLimiter
}

// NewClient creates a client. A nil limiter creates one from cfg.
func NewClient(ctx context.Context, cfg Config, limiter *RateLimiter) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if limiter == nil {
		limiter = NewRateLimiter(cfg.Rate, cfg.Burst)
	}

	var ts oauth2.TokenSource
	if cfg.BearerToken != "" {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.BearerToken, TokenType: "Bearer"})
	} else {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ConsumerKey,
			ClientSecret: cfg.ConsumerSecret,
			TokenURL:     cfg.tokenURL(),
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		ts = cc.TokenSource(ctx)
	}

	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = cfg.timeout()

	return &Client{
		http:        tc,
		tokens:      ts,
		baseURL:     cfg.baseURL(),
		rateLimiter: limiter,
	}, nil
}

// Authenticate obtains a token, fetching one when client credentials are used.
// The fetch is bound to the context the client was created with.
func (c *Client) Authenticate() error {
	if _, err := c.tokens.Token(); err != nil {
		return fmt.Errorf("obtain token: %w", err)
	}
	return nil
}

// RateLimiter returns the client's rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// UserTimeline returns up to count statuses of screenName, newest first.
// A positive sinceID restricts the result to statuses newer than it.
func (c *Client) UserTimeline(ctx context.Context, screenName string, count int, sinceID int64) ([]*Tweet, error) {
	if count <= 0 || count > domain.MaxPageSize {
		count = domain.MaxPageSize
	}
	q := url.Values{}
	q.Set("screen_name", screenName)
	q.Set("count", strconv.Itoa(count))
	q.Set("tweet_mode", "extended")
	q.Set("include_rts", "true")
	if sinceID > 0 {
		q.Set("since_id", strconv.FormatInt(sinceID, 10))
	}

	var raws []json.RawMessage
	if err := c.get(ctx, timelinePath, q, &raws); err != nil {
		return nil, fmt.Errorf("user timeline %s: %w", screenName, err)
	}

	return decodeTimeline(screenName, raws), nil
}

// decodeTimeline decodes each status independently. A status that does not
// decode but still carries an ID is kept as an undecoded Tweet so the
// extractor can reject it on its own; one without an ID is dropped.
func decodeTimeline(screenName string, raws []json.RawMessage) []*Tweet {
	tweets := make([]*Tweet, 0, len(raws))
	for i, raw := range raws {
		t, err := DecodeTweet(raw)
		if err == nil && t.ID > 0 {
			tweets = append(tweets, t)
			continue
		}
		id, ok := statusID(raw)
		if !ok {
			logger.Warn("Dropping status %d of %s timeline without an ID", i, screenName)
			continue
		}
		tweets = append(tweets, &Tweet{ID: id, raw: append(json.RawMessage(nil), raw...)})
	}
	return tweets
}

// Status fetches a single status by ID.
func (c *Client) Status(ctx context.Context, id int64) (*Tweet, error) {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))
	q.Set("tweet_mode", "extended")

	var raw json.RawMessage
	if err := c.get(ctx, showPath, q, &raw); err != nil {
		return nil, fmt.Errorf("show status %d: %w", id, err)
	}
	t, err := DecodeTweet(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode status: %w", domain.ErrUpstream, err)
	}
	return t, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := parseAPIError(resp, body)
		if rlErr := c.rateLimiter.CheckRateLimit(resp, apiErr); rlErr != nil {
			return rlErr
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrUpstream, err)
	}
	return nil
}

// errorBody covers both error shapes the API returns.
type errorBody struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

func parseAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL.Path,
		Message:    http.StatusText(resp.StatusCode),
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return apiErr
	}
	if len(eb.Errors) > 0 {
		apiErr.Message = eb.Errors[0].Message
		for _, e := range eb.Errors {
			apiErr.Codes = append(apiErr.Codes, e.Code)
		}
	} else if eb.Error != "" {
		apiErr.Message = eb.Error
	}
	return apiErr
}

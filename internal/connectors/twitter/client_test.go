package twitter

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

const created1 = "Wed Oct 10 20:19:24 +0000 2018"

func TestNewClient(t *testing.T) {
	t.Run("requires credentials", func(t *testing.T) {
		_, err := NewClient(context.Background(), Config{}, nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("requires both consumer values", func(t *testing.T) {
		_, err := NewClient(context.Background(), Config{ConsumerKey: "key"}, nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("creates limiter when nil", func(t *testing.T) {
		c, err := NewClient(context.Background(), Config{BearerToken: "t"}, nil)
		require.NoError(t, err)
		assert.NotNil(t, c.RateLimiter())
		assert.Equal(t, DefaultBaseURL, c.baseURL)
	})

	t.Run("uses shared limiter", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		c, err := NewClient(context.Background(), Config{BearerToken: "t"}, rl)
		require.NoError(t, err)
		assert.Same(t, rl, c.RateLimiter())
	})
}

func TestClient_UserTimeline(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(timelinePath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRateLimit, "1500")
		w.Header().Set(HeaderRateRemaining, "1499")
		w.Header().Set(HeaderRateReset, "1700000000")
		writeJSON(w, http.StatusOK, "["+tweetJSON(502, created1)+","+tweetJSON(501, created1)+"]")
	})

	c, err := NewClient(context.Background(), api.config(), nil)
	require.NoError(t, err)

	t.Run("sends query and bearer token", func(t *testing.T) {
		tweets, err := c.UserTimeline(context.Background(), "acct1", 50, 500)
		require.NoError(t, err)
		require.Len(t, tweets, 2)
		assert.Equal(t, int64(502), tweets[0].ID)
		assert.Equal(t, "tweet 502", tweets[0].Content())
		assert.Contains(t, string(tweets[0].Raw()), `"id":502`)

		req := api.lastRequest(t)
		q := req.URL.Query()
		assert.Equal(t, "acct1", q.Get("screen_name"))
		assert.Equal(t, "50", q.Get("count"))
		assert.Equal(t, "500", q.Get("since_id"))
		assert.Equal(t, "extended", q.Get("tweet_mode"))
		assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
	})

	t.Run("omits since_id without cursor", func(t *testing.T) {
		_, err := c.UserTimeline(context.Background(), "acct1", 1, 0)
		require.NoError(t, err)
		assert.False(t, api.lastRequest(t).URL.Query().Has("since_id"))
	})

	t.Run("clamps count", func(t *testing.T) {
		_, err := c.UserTimeline(context.Background(), "acct1", 1000, 0)
		require.NoError(t, err)
		assert.Equal(t, "200", api.lastRequest(t).URL.Query().Get("count"))
	})

	t.Run("tracks rate limit headers", func(t *testing.T) {
		assert.Equal(t, 1499, c.RateLimiter().Remaining())
		assert.Equal(t, 1500, c.RateLimiter().Limit())
		assert.Equal(t, time.Unix(1700000000, 0), c.RateLimiter().ResetTime())
	})
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		unauthorized bool
		notFound     bool
		rateLimited  bool
		codes        []int
	}{
		{name: "401 is unauthorized", status: 401, body: `{"request":"/1.1/statuses/user_timeline.json","error":"Not authorized."}`, unauthorized: true},
		{name: "blocked code is unauthorized", status: 403, body: `{"errors":[{"code":136,"message":"You have been blocked"}]}`, unauthorized: true, codes: []int{136}},
		{name: "protected status code", status: 403, body: `{"errors":[{"code":179,"message":"Sorry, you are not authorized to see this status."}]}`, unauthorized: true, codes: []int{179}},
		{name: "suspended user is unauthorized", status: 403, body: `{"errors":[{"code":63,"message":"User has been suspended."}]}`, unauthorized: true, codes: []int{63}},
		{name: "missing user is unauthorized", status: 404, body: `{"errors":[{"code":50,"message":"User not found."}]}`, unauthorized: true, notFound: true, codes: []int{50}},
		{name: "404 is not found", status: 404, body: `{"errors":[{"code":34,"message":"Sorry, that page does not exist."}]}`, notFound: true, codes: []int{34}},
		{name: "no status code", status: 404, body: `{"errors":[{"code":144,"message":"No status found with that ID."}]}`, notFound: true, codes: []int{144}},
		{name: "429 is rate limited", status: 429, body: `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`, rateLimited: true},
		{name: "500 is upstream", status: 500, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.handle(showPath, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			c, err := NewClient(context.Background(), api.config(), nil)
			require.NoError(t, err)

			_, err = c.Status(context.Background(), 42)
			require.Error(t, err)

			assert.Equal(t, tt.unauthorized, errors.Is(err, domain.ErrUnauthorized))
			assert.Equal(t, tt.notFound, IsNotFound(err))
			assert.Equal(t, tt.rateLimited, IsRateLimited(err))
			assert.Equal(t, tt.rateLimited, errors.Is(err, domain.ErrRateLimited))

			if !tt.rateLimited {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.StatusCode)
				assert.Equal(t, tt.codes, apiErr.Codes)
				assert.Equal(t, showPath, apiErr.URL)
			}
			if !tt.unauthorized && !tt.rateLimited {
				assert.ErrorIs(t, err, domain.ErrUpstream)
			}
		})
	}
}

func TestClient_RateLimitRetryAfter(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(timelinePath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRetryAfter, "60")
		writeJSON(w, http.StatusTooManyRequests, `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`)
	})
	c, err := NewClient(context.Background(), api.config(), nil)
	require.NoError(t, err)

	_, err = c.UserTimeline(context.Background(), "acct1", 1, 0)
	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.WithinDuration(t, time.Now().Add(time.Minute), rlErr.ResetAt, 5*time.Second)
}

func TestClient_DecodeFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(timelinePath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"not":"a list"}`)
	})
	c, err := NewClient(context.Background(), api.config(), nil)
	require.NoError(t, err)

	_, err = c.UserTimeline(context.Background(), "acct1", 1, 0)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestClient_UserTimelineIsolatesBadStatuses(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(timelinePath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, "["+
			tweetJSON(503, created1)+","+
			`{"id":502,"id_str":"502","full_text":{"not":"text"}},`+
			`{"id_str":"501","user":"nobody"},`+
			`{"full_text":"no identifier"}`+
			"]")
	})
	c, err := NewClient(context.Background(), api.config(), nil)
	require.NoError(t, err)

	tweets, err := c.UserTimeline(context.Background(), "acct1", 200, 0)
	require.NoError(t, err)
	require.Len(t, tweets, 3)

	assert.Equal(t, int64(503), tweets[0].ID)
	assert.Equal(t, "tweet 503", tweets[0].Content())

	assert.Equal(t, int64(502), tweets[1].ID)
	assert.JSONEq(t, `{"id":502,"id_str":"502","full_text":{"not":"text"}}`, string(tweets[1].Raw()))

	assert.Equal(t, int64(501), tweets[2].ID)
}

func TestStatusID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		id   int64
		ok   bool
	}{
		{name: "numeric id", raw: `{"id":42}`, id: 42, ok: true},
		{name: "string id only", raw: `{"id_str":"43"}`, id: 43, ok: true},
		{name: "id survives type error", raw: `{"id":44,"id_str":7}`, id: 44, ok: true},
		{name: "no id", raw: `{"full_text":"x"}`},
		{name: "zero id", raw: `{"id":0,"id_str":"0"}`},
		{name: "not an object", raw: `"text"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := statusID([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.id, id)
			}
		})
	}
}

func TestClient_ClientCredentials(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(DefaultTokenPath, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		writeJSON(w, http.StatusOK, `{"token_type":"bearer","access_token":"issued-token"}`)
	})
	api.handle(showPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tweetJSON(42, created1))
	})

	cfg := Config{BaseURL: api.URL, ConsumerKey: "key", ConsumerSecret: "secret", Rate: 1000}
	c, err := NewClient(context.Background(), cfg, nil)
	require.NoError(t, err)

	require.NoError(t, c.Authenticate())
	tokenReq := api.lastRequest(t)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("key:secret")), tokenReq.Header.Get("Authorization"))

	tweet, err := c.Status(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), tweet.ID)
	assert.Equal(t, "Bearer issued-token", api.lastRequest(t).Header.Get("Authorization"))
	assert.Equal(t, 1, api.requestCount(DefaultTokenPath))
}

func TestClient_AuthenticateFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(DefaultTokenPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"errors":[{"code":99,"message":"Unable to verify your credentials"}]}`)
	})

	cfg := Config{BaseURL: api.URL, ConsumerKey: "key", ConsumerSecret: "bad"}
	c, err := NewClient(context.Background(), cfg, nil)
	require.NoError(t, err)

	err = c.Authenticate()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "obtain token"))
}

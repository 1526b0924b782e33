package twitter

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Gateway and Dialer implement the interfaces.
var (
	_ driven.Gateway = (*Gateway)(nil)
	_ driven.Dialer  = (*Dialer)(nil)
)

// Gateway reads user timelines through an authenticated Client.
type Gateway struct {
	client *Client
}

// NewGateway wraps an authenticated client.
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

// FetchRecent returns up to limit of the most recent statuses of identity.
func (g *Gateway) FetchRecent(ctx context.Context, identity domain.Identity, limit int) ([]domain.Item, error) {
	tweets, err := g.client.UserTimeline(ctx, string(identity), limit, 0)
	if err != nil {
		return nil, err
	}
	return toItems(identity, tweets), nil
}

// FetchSince returns up to limit statuses of identity newer than cursor.
func (g *Gateway) FetchSince(
	ctx context.Context,
	identity domain.Identity,
	cursor domain.Cursor,
	limit int,
) ([]domain.Item, error) {
	tweets, err := g.client.UserTimeline(ctx, string(identity), limit, int64(cursor))
	if err != nil {
		return nil, err
	}
	return toItems(identity, tweets), nil
}

// Probe reports whether the status at cursor can still be fetched.
// Deleted and protected statuses are stale.
func (g *Gateway) Probe(ctx context.Context, cursor domain.Cursor) (bool, error) {
	_, err := g.client.Status(ctx, int64(cursor))
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err), IsForbiddenStatus(err):
		return false, nil
	default:
		return false, err
	}
}

// Close releases the client's connections.
func (g *Gateway) Close() error {
	g.client.Close()
	return nil
}

func toItems(identity domain.Identity, tweets []*Tweet) []domain.Item {
	items := make([]domain.Item, 0, len(tweets))
	for _, t := range tweets {
		items = append(items, t.Item(identity))
	}
	return items
}

// Dialer authenticates a fresh Client for every run.
// Clients built by one Dialer share its rate limiter.
type Dialer struct {
	cfg     Config
	limiter *RateLimiter
}

// NewDialer creates a dialer for cfg.
func NewDialer(cfg Config) (*Dialer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Dialer{
		cfg:     cfg,
		limiter: NewRateLimiter(cfg.Rate, cfg.Burst),
	}, nil
}

// Dial obtains a token and returns a Gateway bound to ctx.
func (d *Dialer) Dial(ctx context.Context) (driven.Gateway, error) {
	client, err := NewClient(ctx, d.cfg, d.limiter)
	if err != nil {
		return nil, err
	}
	if err := client.Authenticate(); err != nil {
		client.Close()
		return nil, fmt.Errorf("twitter: %w", err)
	}
	return NewGateway(client), nil
}

// RateLimiter returns the limiter shared by the dialer's clients.
func (d *Dialer) RateLimiter() *RateLimiter {
	return d.limiter
}

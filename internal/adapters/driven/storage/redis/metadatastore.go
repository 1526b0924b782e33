// Package redis provides a Redis-backed worker metadata namespace.
//
// Keys are laid out as <prefix>:<worker id>:<key> with plain string values,
// so cursors can be inspected and repaired with redis-cli.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "sercha-ingest"

// Config holds configuration for the Redis client.
type Config struct {
	Addr     string // e.g., "localhost:6379"
	Password string // Leave empty if no password
	DB       int
	Prefix   string
}

// MetadataNamespace implements driven.MetadataNamespace on Redis.
type MetadataNamespace struct {
	client *redis.Client
	prefix string
}

var _ driven.MetadataNamespace = (*MetadataNamespace)(nil)

// NewMetadataNamespace connects to Redis and verifies the connection.
func NewMetadataNamespace(ctx context.Context, cfg Config) (*MetadataNamespace, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is required", domain.ErrInvalidInput)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newMetadataNamespace(client, cfg.Prefix), nil
}

func newMetadataNamespace(client *redis.Client, prefix string) *MetadataNamespace {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &MetadataNamespace{client: client, prefix: prefix}
}

// Close closes the Redis client.
func (n *MetadataNamespace) Close() error {
	return n.client.Close()
}

// Scope returns the metadata store of a worker.
func (n *MetadataNamespace) Scope(workerID string) driven.MetadataStore {
	return &metadataStore{ns: n, workerID: workerID}
}

// Delete removes a key from a worker's scope.
func (n *MetadataNamespace) Delete(ctx context.Context, workerID, key string) error {
	if err := n.client.Del(ctx, n.key(workerID, key)).Err(); err != nil {
		return fmt.Errorf("deleting metadata: %w", err)
	}
	return nil
}

func (n *MetadataNamespace) key(workerID, key string) string {
	return n.prefix + ":" + workerID + ":" + key
}

// metadataStore implements driven.MetadataStore for one worker.
type metadataStore struct {
	ns       *MetadataNamespace
	workerID string
}

func (s *metadataStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.ns.client.Exists(ctx, s.ns.key(s.workerID, key)).Result()
	if err != nil {
		return false, fmt.Errorf("checking metadata: %w", err)
	}
	return n > 0, nil
}

func (s *metadataStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.ns.client.Get(ctx, s.ns.key(s.workerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading metadata: %w", err)
	}
	return value, nil
}

func (s *metadataStore) Set(ctx context.Context, key, value string) error {
	if err := s.ns.client.Set(ctx, s.ns.key(s.workerID, key), value, 0).Err(); err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}

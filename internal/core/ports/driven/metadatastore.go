package driven

import "context"

// MetadataStore is a durable key-value store scoped to one worker.
type MetadataStore interface {
	// Exists reports whether a value is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error
}

// MetadataNamespace hands out worker-scoped metadata stores.
type MetadataNamespace interface {
	// Scope returns the store for a worker. Keys written through one scope
	// are invisible to every other scope.
	Scope(workerID string) MetadataStore

	// Delete removes a key from a worker's scope. Deleting an absent key is not an error.
	Delete(ctx context.Context, workerID, key string) error
}

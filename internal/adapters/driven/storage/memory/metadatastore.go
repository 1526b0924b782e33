package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure MetadataNamespace implements the interface.
var _ driven.MetadataNamespace = (*MetadataNamespace)(nil)

// MetadataNamespace is an in-memory implementation of driven.MetadataNamespace.
type MetadataNamespace struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMetadataNamespace creates a new in-memory metadata namespace.
func NewMetadataNamespace() *MetadataNamespace {
	return &MetadataNamespace{
		values: make(map[string]map[string]string),
	}
}

// Scope returns the metadata store of a worker.
func (n *MetadataNamespace) Scope(workerID string) driven.MetadataStore {
	return &metadataScope{ns: n, workerID: workerID}
}

// Delete removes a key from a worker's scope.
func (n *MetadataNamespace) Delete(_ context.Context, workerID, key string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.values[workerID], key)
	return nil
}

type metadataScope struct {
	ns       *MetadataNamespace
	workerID string
}

func (s *metadataScope) Exists(_ context.Context, key string) (bool, error) {
	s.ns.mu.RLock()
	defer s.ns.mu.RUnlock()
	_, ok := s.ns.values[s.workerID][key]
	return ok, nil
}

func (s *metadataScope) Get(_ context.Context, key string) (string, error) {
	s.ns.mu.RLock()
	defer s.ns.mu.RUnlock()
	value, ok := s.ns.values[s.workerID][key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (s *metadataScope) Set(_ context.Context, key, value string) error {
	s.ns.mu.Lock()
	defer s.ns.mu.Unlock()
	scope, ok := s.ns.values[s.workerID]
	if !ok {
		scope = make(map[string]string)
		s.ns.values[s.workerID] = scope
	}
	scope[key] = value
	return nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore is an in-memory implementation of driven.ContentStore.
type ContentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewContentStore creates a new in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		documents: make(map[string]domain.Document),
	}
}

// SaveDocuments stores or updates documents.
func (s *ContentStore) SaveDocuments(_ context.Context, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range docs {
		if docs[i].ID == "" {
			return domain.ErrInvalidInput
		}
	}
	for _, doc := range docs {
		s.documents[doc.ID] = copyDocument(doc)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *ContentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc = copyDocument(doc)
	return &doc, nil
}

// ListDocuments returns documents of a worker, newest first.
func (s *ContentStore) ListDocuments(_ context.Context, workerID string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	docs := make([]domain.Document, 0)
	for _, doc := range s.documents {
		if doc.WorkerID == workerID {
			docs = append(docs, copyDocument(doc))
		}
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return newerDocument(docs[i], docs[j])
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// CountDocuments returns the number of documents of a worker.
func (s *ContentStore) CountDocuments(_ context.Context, workerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, doc := range s.documents {
		if doc.WorkerID == workerID {
			count++
		}
	}
	return count, nil
}

// newerDocument orders by creation time, then ordinal, then ID, descending.
func newerDocument(a, b domain.Document) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.ItemOrdinal != b.ItemOrdinal {
		return a.ItemOrdinal > b.ItemOrdinal
	}
	return a.ID > b.ID
}

func copyDocument(doc domain.Document) domain.Document {
	if doc.Metadata != nil {
		metadata := make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		doc.Metadata = metadata
	}
	return doc
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes the content store to driving adapters.
type DocumentService struct {
	content driven.ContentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(content driven.ContentStore) *DocumentService {
	return &DocumentService{content: content}
}

// List returns up to limit documents of a worker, newest first.
func (s *DocumentService) List(ctx context.Context, workerID string, limit int) ([]domain.Document, error) {
	if strings.TrimSpace(workerID) == "" {
		return nil, fmt.Errorf("%w: worker id is required", domain.ErrInvalidInput)
	}
	return s.content.ListDocuments(ctx, workerID, limit)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	return s.content.GetDocument(ctx, documentID)
}

// Count returns the number of documents stored for a worker.
func (s *DocumentService) Count(ctx context.Context, workerID string) (int, error) {
	return s.content.CountDocuments(ctx, workerID)
}

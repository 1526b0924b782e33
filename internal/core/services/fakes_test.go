package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// --- Test doubles shared by the services tests ---

// fakeMetadata implements driven.MetadataNamespace over a map.
type fakeMetadata struct {
	mu     sync.Mutex
	values map[string]map[string]string
	sets   int
	getErr error
	setErr error
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{values: make(map[string]map[string]string)}
}

func (m *fakeMetadata) Scope(workerID string) driven.MetadataStore {
	return &fakeScope{m: m, workerID: workerID}
}

func (m *fakeMetadata) Delete(_ context.Context, workerID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[workerID], key)
	return nil
}

func (m *fakeMetadata) value(workerID, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[workerID][key]
	return v, ok
}

func (m *fakeMetadata) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

type fakeScope struct {
	m        *fakeMetadata
	workerID string
}

func (s *fakeScope) Exists(_ context.Context, key string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.getErr != nil {
		return false, s.m.getErr
	}
	_, ok := s.m.values[s.workerID][key]
	return ok, nil
}

func (s *fakeScope) Get(_ context.Context, key string) (string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.getErr != nil {
		return "", s.m.getErr
	}
	v, ok := s.m.values[s.workerID][key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (s *fakeScope) Set(_ context.Context, key, value string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.setErr != nil {
		return s.m.setErr
	}
	if s.m.values[s.workerID] == nil {
		s.m.values[s.workerID] = make(map[string]string)
	}
	s.m.values[s.workerID][key] = value
	s.m.sets++
	return nil
}

// fakeContent implements driven.ContentStore.
type fakeContent struct {
	mu      sync.Mutex
	saved   []domain.Document
	saveErr error
}

func (c *fakeContent) SaveDocuments(_ context.Context, docs []domain.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved = append(c.saved, docs...)
	return nil
}

func (c *fakeContent) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.saved {
		if c.saved[i].ID == id {
			doc := c.saved[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *fakeContent) ListDocuments(_ context.Context, workerID string, _ int) ([]domain.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var docs []domain.Document
	for _, doc := range c.saved {
		if doc.WorkerID == workerID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (c *fakeContent) CountDocuments(ctx context.Context, workerID string) (int, error) {
	docs, _ := c.ListDocuments(ctx, workerID, 0)
	return len(docs), nil
}

// fakeGateway implements driven.Gateway and records every call.
type fakeGateway struct {
	mu sync.Mutex

	// items are the upstream items, newest first.
	items []domain.Item

	recentErr error
	sinceErr  error
	probeLive bool
	probeErr  error
	closed    bool

	calls []string
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) FetchRecent(_ context.Context, identity domain.Identity, limit int) ([]domain.Item, error) {
	g.record(fmt.Sprintf("recent(%s, %d)", identity, limit))
	if g.recentErr != nil {
		return nil, g.recentErr
	}
	if limit > len(g.items) {
		limit = len(g.items)
	}
	return append([]domain.Item(nil), g.items[:limit]...), nil
}

func (g *fakeGateway) FetchSince(
	_ context.Context,
	identity domain.Identity,
	cursor domain.Cursor,
	limit int,
) ([]domain.Item, error) {
	g.record(fmt.Sprintf("since(%s, %d, %d)", identity, cursor, limit))
	if g.sinceErr != nil {
		return nil, g.sinceErr
	}
	var items []domain.Item
	for _, item := range g.items {
		if item.Ordinal > int64(cursor) && len(items) < limit {
			items = append(items, item)
		}
	}
	return items, nil
}

func (g *fakeGateway) Probe(_ context.Context, cursor domain.Cursor) (bool, error) {
	g.record(fmt.Sprintf("probe(%d)", cursor))
	return g.probeLive, g.probeErr
}

func (g *fakeGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func (g *fakeGateway) callLog() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// fakeDialer implements driven.Dialer.
type fakeDialer struct {
	gateway *fakeGateway
	err     error
	dials   int
}

func (d *fakeDialer) Dial(_ context.Context) (driven.Gateway, error) {
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	return d.gateway, nil
}

// fakeExtractor implements driven.Extractor from per-ordinal tables.
// Identifiers come from the "identifier" metadata key when present,
// otherwise from the item ordinal. Timestamps come from CreatedAt.
type fakeExtractor struct {
	mu        sync.Mutex
	docs      map[int64][]domain.Document
	failures  map[int64]error
	extracted []int64
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		docs:     make(map[int64][]domain.Document),
		failures: make(map[int64]error),
	}
}

func (e *fakeExtractor) ExtractFragments(_ context.Context, item domain.Item) ([]domain.Fragment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.extracted = append(e.extracted, item.Ordinal)
	if err := e.failures[item.Ordinal]; err != nil {
		return nil, err
	}
	docs := e.docs[item.Ordinal]
	fragments := make([]domain.Fragment, len(docs))
	for i := range docs {
		fragments[i] = domain.Fragment{ItemOrdinal: item.Ordinal, Index: i}
	}
	return fragments, nil
}

func (e *fakeExtractor) FragmentsToDocuments(_ context.Context, fragments []domain.Fragment) ([]domain.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	docs := make([]domain.Document, 0, len(fragments))
	for _, f := range fragments {
		docs = append(docs, e.docs[f.ItemOrdinal][f.Index])
	}
	return docs, nil
}

func (e *fakeExtractor) DocumentIdentifier(doc domain.Document) string {
	if id, ok := doc.Metadata["identifier"].(string); ok {
		return id
	}
	return strconv.FormatInt(doc.ItemOrdinal, 10)
}

func (e *fakeExtractor) DocumentTimestamp(doc domain.Document) int64 {
	return doc.CreatedAt.Unix()
}

// testWorkContext implements driving.WorkContext with a silent logger.
type testWorkContext struct {
	logger   zerolog.Logger
	metadata driven.MetadataStore
	content  driven.ContentStore
}

func newTestWorkContext(metadata driven.MetadataStore) *testWorkContext {
	return &testWorkContext{
		logger:   zerolog.Nop(),
		metadata: metadata,
		content:  &fakeContent{},
	}
}

func (c *testWorkContext) Logger() *zerolog.Logger             { return &c.logger }
func (c *testWorkContext) MetadataStore() driven.MetadataStore { return c.metadata }
func (c *testWorkContext) ContentStore() driven.ContentStore   { return c.content }

// Ensure fakes implement interfaces
var (
	_ driven.MetadataNamespace = (*fakeMetadata)(nil)
	_ driven.ContentStore      = (*fakeContent)(nil)
	_ driven.Gateway           = (*fakeGateway)(nil)
	_ driven.Dialer            = (*fakeDialer)(nil)
	_ driven.Extractor         = (*fakeExtractor)(nil)
	_ driving.WorkContext      = (*testWorkContext)(nil)
)

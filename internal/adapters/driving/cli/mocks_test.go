package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// mockRunner implements driving.Runner for testing.
type mockRunner struct {
	mu      sync.Mutex
	workers []driving.WorkerInfo
	results map[string]*domain.RunResult
	errs    map[string]error
	status  map[string]*driving.RunStatus
	calls   []string
}

func (m *mockRunner) Run(_ context.Context, workerID string) (*domain.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, workerID)
	return m.results[workerID], m.errs[workerID]
}

func (m *mockRunner) RunAll(ctx context.Context) ([]*domain.RunResult, error) {
	var results []*domain.RunResult
	var errs []error
	for _, w := range m.workers {
		if !w.Spec.Enabled {
			continue
		}
		r, err := m.Run(ctx, w.ID)
		results = append(results, r)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (m *mockRunner) Status(_ context.Context, workerID string) (*driving.RunStatus, error) {
	if s, ok := m.status[workerID]; ok {
		return s, nil
	}
	return &driving.RunStatus{WorkerID: workerID}, nil
}

func (m *mockRunner) Workers() []driving.WorkerInfo {
	return m.workers
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	startErr error
	started  bool
	stopped  bool
}

func (m *mockScheduler) Start(_ context.Context) error {
	m.started = true
	return m.startErr
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

// mockCursorAdmin implements driving.CursorAdmin for testing.
type mockCursorAdmin struct {
	cursors   map[string]string
	setErr    error
	lastSet   string
	lastForce bool
	resets    []string
}

func (m *mockCursorAdmin) Show(_ context.Context, workerID string) (string, bool, error) {
	v, ok := m.cursors[workerID]
	return v, ok, nil
}

func (m *mockCursorAdmin) Set(_ context.Context, workerID, value string, force bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.lastSet = workerID + "=" + value
	m.lastForce = force
	m.cursors[workerID] = value
	return nil
}

func (m *mockCursorAdmin) Reset(_ context.Context, workerID string) error {
	m.resets = append(m.resets, workerID)
	delete(m.cursors, workerID)
	return nil
}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs      []domain.Document
	lastLimit int
}

func (m *mockDocumentService) List(_ context.Context, workerID string, limit int) ([]domain.Document, error) {
	m.lastLimit = limit
	var out []domain.Document
	for _, d := range m.docs {
		if d.WorkerID == workerID {
			out = append(out, d)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Count(_ context.Context, workerID string) (int, error) {
	n := 0
	for _, d := range m.docs {
		if d.WorkerID == workerID {
			n++
		}
	}
	return n, nil
}

const testWorker = "twitter_image_scraper.acct1"

func testWorkers() []driving.WorkerInfo {
	return []driving.WorkerInfo{
		{
			ID:       testWorker,
			Identity: "acct1",
			Spec:     domain.WorkerSpec{Type: domain.WorkerTypeTwitterImage, Identity: "acct1", Enabled: true},
		},
		{
			ID:       "twitter_image_scraper.acct2",
			Identity: "acct2",
			Spec:     domain.WorkerSpec{Type: domain.WorkerTypeTwitterImage, Identity: "acct2"},
		},
	}
}

func testDocuments() []domain.Document {
	created := time.Date(2018, 10, 10, 20, 19, 24, 0, time.UTC)
	return []domain.Document{
		{
			ID: "503-0", WorkerID: testWorker, Identity: "acct1", Kind: domain.MediaPhoto,
			URI: "https://pbs.twimg.com/media/a.jpg", Title: "@acct1: hello", CreatedAt: created,
			Metadata: map[string]any{"tweet_id": "503", "screen_name": "acct1"},
		},
		{
			ID: "502-0", WorkerID: testWorker, Identity: "acct1", Kind: domain.MediaVideo,
			URI: "https://video.twimg.com/v.mp4", CreatedAt: created.Add(-time.Hour),
		},
	}
}

// setupServices installs mocks and returns a cleanup function.
func setupServices(r *mockRunner, s *mockScheduler, c *mockCursorAdmin, d *mockDocumentService) func() {
	oldRunner, oldScheduler, oldCursors, oldDocs, oldFactory := runner, scheduler, cursorAdmin, documentService, factory

	runner, scheduler, cursorAdmin, documentService, factory = nil, nil, nil, nil, nil
	if r != nil {
		runner = r
	}
	if s != nil {
		scheduler = s
	}
	if c != nil {
		cursorAdmin = c
	}
	if d != nil {
		documentService = d
	}

	return func() {
		runner, scheduler, cursorAdmin, documentService, factory = oldRunner, oldScheduler, oldCursors, oldDocs, oldFactory
		cursorForce = false
		documentsLimit = 20
		configPath = ""
	}
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// CursorProtocol runs the bootstrap, validate, fallback and advance steps
// that keep a worker's cursor in step with its upstream.
//
// A CursorProtocol holds no per-run state and is safe to reuse across runs.
// It does not serialise runs of the same identity; the host must.
type CursorProtocol struct {
	identity  domain.Identity
	extractor driven.Extractor
	pageSize  int
	cursorKey string
}

// CursorOption configures a CursorProtocol.
type CursorOption func(*CursorProtocol)

// WithPageSize sets the fetch page size, clamped to [1, domain.MaxPageSize].
func WithPageSize(n int) CursorOption {
	return func(p *CursorProtocol) {
		switch {
		case n <= 0:
			p.pageSize = domain.MaxPageSize
		case n > domain.MaxPageSize:
			p.pageSize = domain.MaxPageSize
		default:
			p.pageSize = n
		}
	}
}

// WithCursorKey sets the metadata key the cursor is stored under.
func WithCursorKey(key string) CursorOption {
	return func(p *CursorProtocol) {
		if key != "" {
			p.cursorKey = key
		}
	}
}

// NewCursorProtocol creates a protocol for one identity.
func NewCursorProtocol(identity domain.Identity, extractor driven.Extractor, opts ...CursorOption) *CursorProtocol {
	p := &CursorProtocol{
		identity:  identity,
		extractor: extractor,
		pageSize:  domain.MaxPageSize,
		cursorKey: domain.CursorKey,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PageSize returns the configured page size.
func (p *CursorProtocol) PageSize() int {
	return p.pageSize
}

// CursorKey returns the metadata key used for the cursor.
func (p *CursorProtocol) CursorKey() string {
	return p.cursorKey
}

// Collect probes the identity, bootstraps or validates the cursor, fetches
// the selected window and extracts documents from every fetched item.
// The stored cursor is only written when it is bootstrapped.
func (p *CursorProtocol) Collect(
	ctx context.Context,
	wc driving.WorkContext,
	gw driven.Gateway,
) (*domain.Batch, error) {
	log := wc.Logger()

	// 1. Availability probe
	head, err := gw.FetchRecent(ctx, p.identity, 1)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			log.Warn().Err(err).Msg("Identity is not accessible, skipping run")
			return &domain.Batch{Skipped: true}, nil
		}
		return nil, fmt.Errorf("availability probe: %w", err)
	}

	// 2. Bootstrap
	bootstrapped, err := p.bootstrap(ctx, wc, head)
	if err != nil {
		return nil, err
	}

	// 3. Validation and window selection
	window, err := p.selectWindow(ctx, wc, gw)
	if err != nil {
		return nil, err
	}

	// 4. Fetch
	var items []domain.Item
	if window.Mode == domain.WindowSince {
		items, err = gw.FetchSince(ctx, p.identity, window.Cursor, window.Limit)
	} else {
		items, err = gw.FetchRecent(ctx, p.identity, window.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", window, err)
	}

	batch := &domain.Batch{
		Window:       window,
		Bootstrapped: bootstrapped,
		ItemsFetched: len(items),
	}

	// 5. Empty short-circuit
	if len(items) == 0 {
		log.Info().Stringer("window", window).Msg("No new items to process")
		return batch, nil
	}

	// 6. Extraction
	log.Info().Stringer("window", window).Int("items", len(items)).Msg("Processing items")
	for i := range items {
		docs, err := p.extract(ctx, items[i])
		if err != nil {
			batch.ExtractionFailures++
			log.Warn().Err(err).Int64("ordinal", items[i].Ordinal).Msg("Extraction failed, skipping item")
			continue
		}
		batch.Documents = append(batch.Documents, docs...)
	}

	log.Info().
		Int("documents", len(batch.Documents)).
		Int("extraction_failures", batch.ExtractionFailures).
		Msg("Extraction complete")
	return batch, nil
}

// Advance writes the identifier of the newest document as the new cursor.
// It returns the cursor now stored and whether it was written. An empty
// document set leaves the cursor untouched, as does a candidate that is not
// ahead of the stored cursor.
func (p *CursorProtocol) Advance(
	ctx context.Context,
	wc driving.WorkContext,
	docs []domain.Document,
) (domain.Cursor, bool, error) {
	log := wc.Logger()
	store := wc.MetadataStore()

	current, hasCurrent, err := p.Stored(ctx, store)
	if err != nil {
		return 0, false, err
	}

	if len(docs) == 0 {
		log.Info().Msg("No documents produced, cursor unchanged")
		return current, false, nil
	}

	newest := p.Newest(docs)
	identifier := p.extractor.DocumentIdentifier(newest)
	next, err := domain.ParseCursor(identifier)
	if err != nil {
		return current, false, fmt.Errorf("document %s identifier: %w", newest.ID, err)
	}

	if hasCurrent && next <= current {
		log.Warn().
			Stringer("stored", current).
			Stringer("candidate", next).
			Msg("Candidate cursor is not ahead of stored cursor, not advancing")
		return current, false, nil
	}

	if err := store.Set(ctx, p.cursorKey, next.String()); err != nil {
		return current, false, fmt.Errorf("store cursor: %w", err)
	}

	log.Info().Stringer("cursor", next).Msg("Cursor advanced")
	return next, true, nil
}

// Newest returns the document with the greatest timestamp. Ties are broken
// by item ordinal, then by identifier, so the choice never depends on order.
// docs must not be empty.
func (p *CursorProtocol) Newest(docs []domain.Document) domain.Document {
	best := docs[0]
	for _, doc := range docs[1:] {
		if p.newer(doc, best) {
			best = doc
		}
	}
	return best
}

// Stored returns the stored cursor and whether one exists.
func (p *CursorProtocol) Stored(ctx context.Context, store driven.MetadataStore) (domain.Cursor, bool, error) {
	exists, err := store.Exists(ctx, p.cursorKey)
	if err != nil {
		return 0, false, fmt.Errorf("check cursor: %w", err)
	}
	if !exists {
		return 0, false, nil
	}
	raw, err := store.Get(ctx, p.cursorKey)
	if err != nil {
		return 0, false, fmt.Errorf("read cursor: %w", err)
	}
	c, err := domain.ParseCursor(raw)
	if err != nil {
		return 0, false, err
	}
	return c, true, nil
}

// bootstrap stores an initial cursor when none exists, using the most
// recent items already fetched by the availability probe.
func (p *CursorProtocol) bootstrap(ctx context.Context, wc driving.WorkContext, head []domain.Item) (bool, error) {
	store := wc.MetadataStore()

	exists, err := store.Exists(ctx, p.cursorKey)
	if err != nil {
		return false, fmt.Errorf("check cursor: %w", err)
	}
	if exists {
		return false, nil
	}

	wc.Logger().Info().Msg("Cursor is not set, bootstrapping it")
	if len(head) == 0 {
		return false, domain.ErrBootstrapEmpty
	}

	initial := head[0].Ordinal
	for _, item := range head[1:] {
		if item.Ordinal > initial {
			initial = item.Ordinal
		}
	}

	c := domain.Cursor(initial)
	if err := store.Set(ctx, p.cursorKey, c.String()); err != nil {
		return false, fmt.Errorf("store initial cursor: %w", err)
	}
	wc.Logger().Info().Stringer("cursor", c).Msg("Cursor bootstrapped")
	return true, nil
}

// selectWindow validates the stored cursor upstream. A live cursor bounds
// the fetch; a stale one falls back to the most recent page.
func (p *CursorProtocol) selectWindow(
	ctx context.Context,
	wc driving.WorkContext,
	gw driven.Gateway,
) (domain.FetchWindow, error) {
	log := wc.Logger()

	cursor, ok, err := p.Stored(ctx, wc.MetadataStore())
	if err != nil {
		return domain.FetchWindow{}, err
	}
	if !ok {
		return domain.FetchWindow{}, fmt.Errorf("read cursor: %w", domain.ErrNotFound)
	}

	live, err := gw.Probe(ctx, cursor)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.FetchWindow{}, fmt.Errorf("probe cursor %s: %w", cursor, ctxErr)
		}
		log.Warn().Err(err).Stringer("cursor", cursor).Msg("Cursor lookup failed, treating cursor as stale")
	}

	if err == nil && live {
		log.Info().Stringer("cursor", cursor).Msg("Cursor is valid, fetching items since cursor")
		return domain.FetchWindow{Mode: domain.WindowSince, Cursor: cursor, Limit: p.pageSize}, nil
	}

	log.Info().
		Stringer("cursor", cursor).
		Int("limit", p.pageSize).
		Msg("Cursor is stale, fetching most recent items")
	return domain.FetchWindow{Mode: domain.WindowRecent, Cursor: cursor, Limit: p.pageSize}, nil
}

// extract runs both extraction stages for one item and stamps provenance
// the extractor left empty.
func (p *CursorProtocol) extract(ctx context.Context, item domain.Item) ([]domain.Document, error) {
	fragments, err := p.extractor.ExtractFragments(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("extract fragments: %w", err)
	}
	if len(fragments) == 0 {
		return nil, nil
	}

	docs, err := p.extractor.FragmentsToDocuments(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("fragments to documents: %w", err)
	}

	for i := range docs {
		if docs[i].ItemOrdinal == 0 {
			docs[i].ItemOrdinal = item.Ordinal
		}
		if docs[i].Identity == "" {
			docs[i].Identity = p.identity
		}
	}
	return docs, nil
}

// newer reports whether a sorts after b.
func (p *CursorProtocol) newer(a, b domain.Document) bool {
	ta, tb := p.extractor.DocumentTimestamp(a), p.extractor.DocumentTimestamp(b)
	if ta != tb {
		return ta > tb
	}
	if a.ItemOrdinal != b.ItemOrdinal {
		return a.ItemOrdinal > b.ItemOrdinal
	}
	ia, ib := p.extractor.DocumentIdentifier(a), p.extractor.DocumentIdentifier(b)
	ca, errA := domain.ParseCursor(ia)
	cb, errB := domain.ParseCursor(ib)
	if errA == nil && errB == nil {
		return ca > cb
	}
	return ia > ib
}

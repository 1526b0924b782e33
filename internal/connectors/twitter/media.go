package twitter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure MediaExtractor implements the interface.
var _ driven.Extractor = (*MediaExtractor)(nil)

// Document metadata keys set by MediaExtractor.
const (
	MetaTweetID    = "tweet_id"
	MetaScreenName = "screen_name"
	MetaTweetURL   = "tweet_url"
	MetaText       = "text"
	MetaMediaID    = "media_id"
	MetaRetweet    = "retweet"
)

// maxTitleRunes bounds the length of document titles.
const maxTitleRunes = 80

// MediaExtractor turns statuses into one document per attached media.
type MediaExtractor struct {
	cfg *ExtractorConfig
}

// NewMediaExtractor creates an extractor. A nil cfg keeps every media kind
// and skips retweets.
func NewMediaExtractor(cfg *ExtractorConfig) *MediaExtractor {
	if cfg == nil {
		cfg = &ExtractorConfig{Kinds: AllMediaKinds()}
	}
	return &MediaExtractor{cfg: cfg}
}

// ExtractFragments emits one fragment per enabled media attachment.
func (e *MediaExtractor) ExtractFragments(_ context.Context, item domain.Item) ([]domain.Fragment, error) {
	t, err := DecodeTweet(item.Raw)
	if err != nil {
		return nil, fmt.Errorf("decode tweet %d: %w", item.Ordinal, err)
	}
	if _, err := t.Created(); err != nil {
		return nil, fmt.Errorf("%w: tweet %d created_at: %w", domain.ErrUpstream, item.Ordinal, err)
	}
	if t.IsRetweet() && !e.cfg.IncludeRetweets {
		return nil, nil
	}

	var fragments []domain.Fragment
	for i, m := range t.MediaList() {
		kind, url, ok := mediaSource(m)
		if !ok || !e.cfg.HasKind(kind) {
			continue
		}
		fragments = append(fragments, domain.Fragment{
			ItemOrdinal:   item.Ordinal,
			ItemCreatedAt: item.CreatedAt,
			Index:         i,
			Kind:          kind,
			URL:           url,
			Metadata: map[string]any{
				MetaTweetID:    strconv.FormatInt(item.Ordinal, 10),
				MetaScreenName: t.User.ScreenName,
				MetaTweetURL:   m.ExpandedURL,
				MetaText:       t.Content(),
				MetaMediaID:    m.IDStr,
				MetaRetweet:    t.IsRetweet(),
			},
		})
	}
	return fragments, nil
}

// FragmentsToDocuments maps each fragment to a document keyed "<tweet id>-<index>".
func (e *MediaExtractor) FragmentsToDocuments(_ context.Context, fragments []domain.Fragment) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(fragments))
	for _, f := range fragments {
		metadata := make(map[string]any, len(f.Metadata))
		for k, v := range f.Metadata {
			metadata[k] = v
		}
		docs = append(docs, domain.Document{
			ID:          fmt.Sprintf("%d-%d", f.ItemOrdinal, f.Index),
			ItemOrdinal: f.ItemOrdinal,
			URI:         f.URL,
			Kind:        f.Kind,
			Title:       title(metadata),
			Metadata:    metadata,
			CreatedAt:   f.ItemCreatedAt,
		})
	}
	return docs, nil
}

// DocumentIdentifier returns the tweet ID the document was extracted from.
func (e *MediaExtractor) DocumentIdentifier(doc domain.Document) string {
	if id, ok := doc.Metadata[MetaTweetID].(string); ok && id != "" {
		return id
	}
	return strconv.FormatInt(doc.ItemOrdinal, 10)
}

// DocumentTimestamp returns the tweet creation time in seconds.
func (e *MediaExtractor) DocumentTimestamp(doc domain.Document) int64 {
	return doc.CreatedAt.Unix()
}

// mediaSource resolves a media attachment to its kind and payload URL.
func mediaSource(m Media) (domain.MediaKind, string, bool) {
	switch kind := domain.MediaKind(m.Type); kind {
	case domain.MediaPhoto:
		return kind, m.MediaURLHTTPS, m.MediaURLHTTPS != ""
	case domain.MediaVideo, domain.MediaAnimatedGIF:
		url, ok := m.BestVariant()
		return kind, url, ok
	default:
		return domain.MediaUnrecognised, "", false
	}
}

func title(metadata map[string]any) string {
	text, _ := metadata[MetaText].(string)
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxTitleRunes {
		text = string(r[:maxTitleRunes-1]) + "…"
	}
	if name, _ := metadata[MetaScreenName].(string); name != "" {
		if text == "" {
			return "@" + name
		}
		return "@" + name + ": " + text
	}
	return text
}

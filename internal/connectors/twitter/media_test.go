package twitter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

const mediaTweet = `{
  "id": 503,
  "id_str": "503",
  "created_at": "Wed Oct 10 20:19:24 +0000 2018",
  "full_text": "Look at   these\nhttps://t.co/x",
  "user": {"id": 1, "screen_name": "acct1"},
  "extended_entities": {"media": [
    {"id": 9001, "id_str": "9001", "type": "photo",
     "media_url_https": "https://pbs.twimg.com/media/a.jpg",
     "expanded_url": "https://twitter.com/acct1/status/503/photo/1"},
    {"id": 9002, "id_str": "9002", "type": "video",
     "media_url_https": "https://pbs.twimg.com/thumb.jpg",
     "video_info": {"variants": [
       {"bitrate": 832000, "content_type": "video/mp4", "url": "https://video.twimg.com/mid.mp4"},
       {"content_type": "application/x-mpegURL", "url": "https://video.twimg.com/pl.m3u8"},
       {"bitrate": 2176000, "content_type": "video/mp4", "url": "https://video.twimg.com/high.mp4"}
     ]}},
    {"id": 9003, "id_str": "9003", "type": "animated_gif",
     "video_info": {"variants": [
       {"bitrate": 0, "content_type": "video/mp4", "url": "https://video.twimg.com/gif.mp4"}
     ]}},
    {"id": 9004, "id_str": "9004", "type": "sticker"}
  ]}
}`

const retweet = `{
  "id": 600,
  "id_str": "600",
  "created_at": "Wed Oct 10 21:00:00 +0000 2018",
  "full_text": "RT @other: pic",
  "user": {"id": 1, "screen_name": "acct1"},
  "retweeted_status": {
    "id": 42, "id_str": "42",
    "created_at": "Tue Oct 09 10:00:00 +0000 2018",
    "user": {"id": 2, "screen_name": "other"},
    "extended_entities": {"media": [
      {"id": 7, "id_str": "7", "type": "photo", "media_url_https": "https://pbs.twimg.com/media/rt.jpg"}
    ]}
  }
}`

func itemFor(t *testing.T, raw string) domain.Item {
	t.Helper()
	tweet, err := DecodeTweet([]byte(raw))
	require.NoError(t, err)
	return tweet.Item("acct1")
}

func TestMediaExtractor_ExtractFragments(t *testing.T) {
	e := NewMediaExtractor(nil)

	fragments, err := e.ExtractFragments(context.Background(), itemFor(t, mediaTweet))
	require.NoError(t, err)
	require.Len(t, fragments, 3)

	assert.Equal(t, domain.MediaPhoto, fragments[0].Kind)
	assert.Equal(t, "https://pbs.twimg.com/media/a.jpg", fragments[0].URL)
	assert.Equal(t, 0, fragments[0].Index)

	assert.Equal(t, domain.MediaVideo, fragments[1].Kind)
	assert.Equal(t, "https://video.twimg.com/high.mp4", fragments[1].URL)
	assert.Equal(t, 1, fragments[1].Index)

	assert.Equal(t, domain.MediaAnimatedGIF, fragments[2].Kind)
	assert.Equal(t, "https://video.twimg.com/gif.mp4", fragments[2].URL)

	for _, f := range fragments {
		assert.Equal(t, int64(503), f.ItemOrdinal)
		assert.Equal(t, "503", f.Metadata[MetaTweetID])
		assert.Equal(t, "acct1", f.Metadata[MetaScreenName])
	}
}

func TestMediaExtractor_KindFilter(t *testing.T) {
	e := NewMediaExtractor(&ExtractorConfig{Kinds: []domain.MediaKind{domain.MediaVideo}})

	fragments, err := e.ExtractFragments(context.Background(), itemFor(t, mediaTweet))
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, domain.MediaVideo, fragments[0].Kind)
	assert.Equal(t, 1, fragments[0].Index)
}

func TestMediaExtractor_Retweets(t *testing.T) {
	t.Run("skipped by default", func(t *testing.T) {
		e := NewMediaExtractor(nil)
		fragments, err := e.ExtractFragments(context.Background(), itemFor(t, retweet))
		require.NoError(t, err)
		assert.Empty(t, fragments)
	})

	t.Run("included when enabled", func(t *testing.T) {
		e := NewMediaExtractor(&ExtractorConfig{Kinds: AllMediaKinds(), IncludeRetweets: true})
		fragments, err := e.ExtractFragments(context.Background(), itemFor(t, retweet))
		require.NoError(t, err)
		require.Len(t, fragments, 1)
		assert.Equal(t, "https://pbs.twimg.com/media/rt.jpg", fragments[0].URL)
		assert.Equal(t, int64(600), fragments[0].ItemOrdinal)
		assert.Equal(t, true, fragments[0].Metadata[MetaRetweet])
	})
}

func TestMediaExtractor_NoMedia(t *testing.T) {
	e := NewMediaExtractor(nil)
	fragments, err := e.ExtractFragments(context.Background(), itemFor(t, tweetJSON(10, created1)))
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestMediaExtractor_InvalidPayload(t *testing.T) {
	e := NewMediaExtractor(nil)
	_, err := e.ExtractFragments(context.Background(), domain.Item{Ordinal: 5, Raw: []byte("{broken")})
	assert.Error(t, err)
}

func TestMediaExtractor_BadCreatedAt(t *testing.T) {
	e := NewMediaExtractor(nil)
	item := itemFor(t, tweetJSON(11, "yesterday"))
	require.True(t, item.CreatedAt.IsZero())

	_, err := e.ExtractFragments(context.Background(), item)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestMediaExtractor_FragmentsToDocuments(t *testing.T) {
	e := NewMediaExtractor(nil)
	item := itemFor(t, mediaTweet)

	fragments, err := e.ExtractFragments(context.Background(), item)
	require.NoError(t, err)
	docs, err := e.FragmentsToDocuments(context.Background(), fragments)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "503-0", docs[0].ID)
	assert.Equal(t, "503-1", docs[1].ID)
	assert.Equal(t, "503-2", docs[2].ID)
	assert.Equal(t, "https://video.twimg.com/high.mp4", docs[1].URI)
	assert.Equal(t, domain.MediaVideo, docs[1].Kind)
	assert.Equal(t, "@acct1: Look at these https://t.co/x", docs[0].Title)
	assert.Equal(t, item.CreatedAt, docs[0].CreatedAt)
	assert.Equal(t, int64(503), docs[0].ItemOrdinal)

	docs[0].Metadata["extra"] = 1
	assert.NotContains(t, fragments[0].Metadata, "extra")
}

func TestMediaExtractor_IdentifierAndTimestamp(t *testing.T) {
	e := NewMediaExtractor(nil)
	created := time.Date(2018, 10, 10, 20, 19, 24, 0, time.UTC)

	doc := domain.Document{
		ItemOrdinal: 503,
		CreatedAt:   created,
		Metadata:    map[string]any{MetaTweetID: "503"},
	}
	assert.Equal(t, "503", e.DocumentIdentifier(doc))
	assert.Equal(t, created.Unix(), e.DocumentTimestamp(doc))

	doc.Metadata = nil
	assert.Equal(t, "503", e.DocumentIdentifier(doc))
}

func TestTitle(t *testing.T) {
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'a'
	}
	got := title(map[string]any{MetaText: string(long)})
	assert.Len(t, []rune(got), maxTitleRunes)

	assert.Equal(t, "@acct1", title(map[string]any{MetaScreenName: "acct1"}))
	assert.Equal(t, "", title(map[string]any{}))
}

func TestMedia_BestVariant(t *testing.T) {
	_, ok := Media{Type: "video"}.BestVariant()
	assert.False(t, ok)

	_, ok = Media{VideoInfo: &VideoInfo{Variants: []Variant{{ContentType: "application/x-mpegURL", URL: "x"}}}}.BestVariant()
	assert.False(t, ok)
}

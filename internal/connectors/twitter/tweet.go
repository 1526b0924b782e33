package twitter

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// CreatedAtLayout is the timestamp layout of v1.1 payloads.
const CreatedAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Tweet is the subset of a v1.1 status the connector reads.
type Tweet struct {
	ID               int64     `json:"id"`
	IDStr            string    `json:"id_str"`
	CreatedAt        string    `json:"created_at"`
	FullText         string    `json:"full_text"`
	Text             string    `json:"text"`
	User             User      `json:"user"`
	RetweetedStatus  *Tweet    `json:"retweeted_status,omitempty"`
	ExtendedEntities *Entities `json:"extended_entities,omitempty"`

	raw json.RawMessage
}

// User is the author of a Tweet.
type User struct {
	ID         int64  `json:"id"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

// Entities holds native media attachments.
type Entities struct {
	Media []Media `json:"media"`
}

// Media is one attached photo, video or animated GIF.
type Media struct {
	ID            int64      `json:"id"`
	IDStr         string     `json:"id_str"`
	Type          string     `json:"type"`
	MediaURLHTTPS string     `json:"media_url_https"`
	ExpandedURL   string     `json:"expanded_url"`
	VideoInfo     *VideoInfo `json:"video_info,omitempty"`
}

// VideoInfo lists the encodings of a video or animated GIF.
type VideoInfo struct {
	Variants []Variant `json:"variants"`
}

// Variant is one encoding of a video.
type Variant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// DecodeTweet decodes one status payload and retains it as the raw form.
func DecodeTweet(data []byte) (*Tweet, error) {
	var t Tweet
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	t.raw = append(json.RawMessage(nil), data...)
	return &t, nil
}

// Raw returns the payload the tweet was decoded from.
func (t *Tweet) Raw() []byte {
	return t.raw
}

// Created parses the creation time.
func (t *Tweet) Created() (time.Time, error) {
	return time.Parse(CreatedAtLayout, t.CreatedAt)
}

// Content returns the full text, falling back to the truncated text.
func (t *Tweet) Content() string {
	if t.FullText != "" {
		return t.FullText
	}
	return t.Text
}

// IsRetweet reports whether the tweet is a retweet.
func (t *Tweet) IsRetweet() bool {
	return t.RetweetedStatus != nil
}

// MediaList returns the native media of the tweet, taken from the retweeted
// status when the wrapper carries none.
func (t *Tweet) MediaList() []Media {
	if t.ExtendedEntities != nil && len(t.ExtendedEntities.Media) > 0 {
		return t.ExtendedEntities.Media
	}
	if t.RetweetedStatus != nil {
		return t.RetweetedStatus.MediaList()
	}
	return nil
}

// Item converts the tweet into a domain item for identity. An unparsable
// created_at leaves CreatedAt zero; the extractor rejects such items.
func (t *Tweet) Item(identity domain.Identity) domain.Item {
	item := domain.Item{
		Identity: identity,
		Ordinal:  t.ID,
		Raw:      t.raw,
		Metadata: map[string]any{
			"screen_name": t.User.ScreenName,
			"retweet":     t.IsRetweet(),
		},
	}
	if created, err := t.Created(); err == nil {
		item.CreatedAt = created
	}
	return item
}

// statusID recovers the ID of a status that does not decode as a Tweet.
// A type error elsewhere in the payload still leaves the ID fields set.
func statusID(data []byte) (int64, bool) {
	var head struct {
		ID    int64  `json:"id"`
		IDStr string `json:"id_str"`
	}
	_ = json.Unmarshal(data, &head)
	if head.ID > 0 {
		return head.ID, true
	}
	id, err := strconv.ParseInt(head.IDStr, 10, 64)
	return id, err == nil && id > 0
}

// BestVariant returns the URL of the highest bitrate mp4 variant.
func (m Media) BestVariant() (string, bool) {
	if m.VideoInfo == nil {
		return "", false
	}
	best := -1
	var url string
	for _, v := range m.VideoInfo.Variants {
		if v.ContentType != "video/mp4" || v.URL == "" {
			continue
		}
		if v.Bitrate > best {
			best = v.Bitrate
			url = v.URL
		}
	}
	return url, best >= 0
}

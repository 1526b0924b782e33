package domain

import "time"

// Identity is the stable key of one polling target, such as an upstream account.
type Identity string

// Item is one unit fetched from upstream.
// It only lives for the duration of one run.
type Item struct {
	// Identity is the polling target the item belongs to.
	Identity Identity

	// Ordinal is the item's position in the upstream ordering, comparable to a Cursor.
	Ordinal int64

	// CreatedAt is when the item was created upstream.
	CreatedAt time.Time

	// Raw is the source-specific payload, decoded by an Extractor.
	Raw []byte

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]any
}

// MediaKind classifies a fragment's payload.
type MediaKind string

const (
	MediaPhoto        MediaKind = "photo"
	MediaVideo        MediaKind = "video"
	MediaAnimatedGIF  MediaKind = "animated_gif"
	MediaUnrecognised MediaKind = ""
)

// Fragment is an intermediate extraction result from one Item.
type Fragment struct {
	// ItemOrdinal links the fragment back to its Item.
	ItemOrdinal int64

	// ItemCreatedAt is the creation time of the originating Item.
	ItemCreatedAt time.Time

	// Index is the fragment's position within its Item.
	Index int

	// Kind is the payload type.
	Kind MediaKind

	// URL locates the payload.
	URL string

	// Metadata contains extractor-specific key-value pairs.
	Metadata map[string]any
}

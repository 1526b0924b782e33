package domain

import "time"

// Document is the persisted output unit derived from one or more fragments.
// The core produces documents and hands them to a ContentStore; it does not
// own their persistence.
type Document struct {
	// ID is the unique storage key for the document.
	ID string

	// WorkerID is the worker that produced the document.
	WorkerID string

	// Identity is the polling target the document came from.
	Identity Identity

	// ItemOrdinal is the ordinal of the Item the document was derived from.
	// It breaks ties between documents with the same timestamp.
	ItemOrdinal int64

	// URI locates the document's payload.
	URI string

	// Kind is the payload type.
	Kind MediaKind

	// Title is a human-readable summary.
	Title string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the underlying item was created upstream.
	CreatedAt time.Time

	// IngestedAt is when the document was handed to the content store.
	IngestedAt time.Time
}

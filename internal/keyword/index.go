// Package keyword provides a BM25 fallback index over chunk text, used when
// the embedding backend is degraded and cosine ranking is meaningless.
package keyword

import "context"

// Entry is one indexed chunk.
type Entry struct {
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id"`
	Text       string `json:"text"`
}

// Result is a single keyword search hit. ID is the embedding row ID.
type Result struct {
	ID    string
	Score float64
}

// Index defines keyword indexing and search over chunks.
type Index interface {
	// Index adds or replaces one chunk entry under the embedding row ID.
	Index(ctx context.Context, id string, entry *Entry) error
	// Delete removes entries by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error
	// DeleteAll wipes the index.
	DeleteAll(ctx context.Context) error
	// Search runs a match query, restricted to the given object types when
	// non-empty, and returns up to limit hits scored by relevance.
	Search(ctx context.Context, query string, objectTypes []string, limit int) ([]*Result, error)

	Close() error
}

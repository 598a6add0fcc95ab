// Package store defines the persistence interface for chunk embeddings.
package store

import (
	"context"
	"errors"

	"github.com/kioku-labs/kioku/internal/models"
)

// ErrDimensionMismatch is returned when a vector's length differs from the
// dimension already established in the store. This happens when the embedding
// model is switched mid-project; recovery is DeleteAll plus a full re-index,
// never truncation or padding.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Store defines embedding persistence operations.
type Store interface {
	// Put inserts one embedding. Returns ErrDimensionMismatch (wrapped)
	// when the vector length differs from already stored vectors.
	Put(ctx context.Context, emb *models.Embedding) error
	// PutBatch inserts embeddings for one object atomically.
	PutBatch(ctx context.Context, embs []*models.Embedding) error
	// GetAll returns all embeddings, restricted to objectType when non-empty.
	GetAll(ctx context.Context, objectType string) ([]*models.Embedding, error)
	// GetByIDs returns embeddings for the given row IDs; unknown IDs are
	// silently skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*models.Embedding, error)
	// DeleteByObject removes every embedding for one (objectType, objectID)
	// and returns the removed row IDs.
	DeleteByObject(ctx context.Context, objectType, objectID string) ([]string, error)
	// DeleteAll wipes the store. Used to recover from a dimension mismatch.
	DeleteAll(ctx context.Context) error
	// CountByType returns embedding row counts per object type.
	CountByType(ctx context.Context) (map[string]int, error)
	// CountObjectsByType returns distinct indexed object counts per object type.
	CountObjectsByType(ctx context.Context) (map[string]int, error)

	Close() error
}

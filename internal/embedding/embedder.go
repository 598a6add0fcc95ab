// Package embedding provides clients for the external embedding service,
// plus caching and availability-degradation wrappers.
package embedding

import "context"

// Embedder produces vector embeddings for text. All vectors returned in one
// session share the same fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds each text in order. Empty input yields empty output.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

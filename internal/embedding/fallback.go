package embedding

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// FallbackEmbedder wraps an Embedder and degrades to zero vectors when the
// backend is unreachable instead of failing the pipeline. Indexing and search
// stay structurally consistent at the cost of indiscriminate zero similarity;
// callers check Degraded and surface a low-confidence warning.
type FallbackEmbedder struct {
	inner    Embedder
	degraded atomic.Bool
	logger   *zap.Logger // optional
}

// FallbackOption configures a FallbackEmbedder.
type FallbackOption func(*FallbackEmbedder)

// WithLogger sets a logger for degradation events.
func WithLogger(l *zap.Logger) FallbackOption {
	return func(f *FallbackEmbedder) { f.logger = l }
}

// NewFallbackEmbedder wraps inner with zero-vector degradation.
func NewFallbackEmbedder(inner Embedder, opts ...FallbackOption) *FallbackEmbedder {
	f := &FallbackEmbedder{inner: inner}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Embed returns the inner embedding, or a zero vector of the configured
// dimension when the backend fails.
func (f *FallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := f.inner.Embed(ctx, text)
	if err != nil {
		f.markDegraded(err)
		return make([]float32, f.inner.Dimensions()), nil
	}
	f.degraded.Store(false)
	return vec, nil
}

// EmbedBatch embeds all texts, degrading the whole batch to zero vectors on
// backend failure. Empty input yields empty output.
func (f *FallbackEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vecs, err := f.inner.EmbedBatch(ctx, texts)
	if err != nil {
		f.markDegraded(err)
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = make([]float32, f.inner.Dimensions())
		}
		return out, nil
	}
	f.degraded.Store(false)
	return vecs, nil
}

func (f *FallbackEmbedder) markDegraded(err error) {
	if f.degraded.CompareAndSwap(false, true) && f.logger != nil {
		f.logger.Warn("embedding backend unavailable, degrading to zero vectors", zap.Error(err))
	}
}

// Degraded reports whether the most recent embedding call hit the fallback.
func (f *FallbackEmbedder) Degraded() bool {
	return f.degraded.Load()
}

// Dimensions returns the inner embedder's dimension.
func (f *FallbackEmbedder) Dimensions() int {
	return f.inner.Dimensions()
}

// Close closes the inner embedder.
func (f *FallbackEmbedder) Close() error {
	return f.inner.Close()
}

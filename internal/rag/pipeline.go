// Package rag orchestrates chunking, embedding, storage, and retrieval for
// the assistant's record corpus.
package rag

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kioku-labs/kioku/internal/chunker"
	"github.com/kioku-labs/kioku/internal/config"
	"github.com/kioku-labs/kioku/internal/embedding"
	"github.com/kioku-labs/kioku/internal/keyword"
	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/records"
	"github.com/kioku-labs/kioku/internal/store"
	"github.com/kioku-labs/kioku/internal/vector"
)

// degradable is implemented by embedders that can report a zero-vector
// fallback, such as embedding.FallbackEmbedder.
type degradable interface {
	Degraded() bool
}

// Pipeline indexes records into the embedding store and serves
// similarity search over them.
type Pipeline struct {
	retriever records.Retriever
	embedder  embedding.Embedder
	store     store.Store
	keyword   keyword.Index
	chunker   *chunker.Chunker
	config    *config.SearchConfig
	logger    *zap.Logger // optional; when set, logs debug events

	// queryGroup coalesces concurrent identical query embeddings.
	queryGroup singleflight.Group

	// rebuildMu guards the rebuild state below. The flag makes Rebuild
	// single-flight: a trigger while a rebuild is active is a no-op.
	rebuildMu  sync.Mutex
	rebuilding bool
	current    int
	total      int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline with the given dependencies.
func NewPipeline(
	retriever records.Retriever,
	embedder embedding.Embedder,
	embStore store.Store,
	keywordIndex keyword.Index,
	cfg *config.SearchConfig,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		retriever: retriever,
		embedder:  embedder,
		store:     embStore,
		keyword:   keywordIndex,
		chunker:   chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		config:    cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Degraded reports whether the embedding backend is currently degraded.
func (p *Pipeline) Degraded() bool {
	if d, ok := p.embedder.(degradable); ok {
		return d.Degraded()
	}
	return false
}

// IndexRecord chunks, embeds, and stores one record. It is idempotent per
// (objectType, objectID): prior chunks are removed before the fresh set is
// inserted, so re-indexing a changed record never leaves stale duplicates.
func (p *Pipeline) IndexRecord(ctx context.Context, rec *models.Record) error {
	chunks := p.chunker.Chunk(rec.ObjectType, rec.ObjectID, rec.Text())

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	embs := make([]*models.Embedding, len(chunks))
	for i, ch := range chunks {
		embs[i] = &models.Embedding{
			ID:         uuid.New().String(),
			ObjectType: ch.ObjectType,
			ObjectID:   ch.ObjectID,
			ChunkText:  ch.Text,
			Vector:     vectors[i],
		}
	}

	// Replace rather than append: the old chunk set goes away in full
	// before the new one lands, keeping the index consistent even if a
	// rebuild is abandoned between records.
	removed, err := p.store.DeleteByObject(ctx, rec.ObjectType, rec.ObjectID)
	if err != nil {
		return fmt.Errorf("failed to delete prior embeddings: %w", err)
	}
	if len(removed) > 0 {
		if err := p.keyword.Delete(ctx, removed); err != nil {
			return fmt.Errorf("failed to delete prior keyword entries: %w", err)
		}
	}
	if err := p.store.PutBatch(ctx, embs); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}
	for _, emb := range embs {
		entry := &keyword.Entry{
			ObjectType: emb.ObjectType,
			ObjectID:   emb.ObjectID,
			Text:       emb.ChunkText,
		}
		if err := p.keyword.Index(ctx, emb.ID, entry); err != nil {
			return fmt.Errorf("failed to index keywords: %w", err)
		}
	}
	if p.logger != nil {
		p.logger.Debug("record indexed",
			zap.String("object_type", rec.ObjectType),
			zap.String("object_id", rec.ObjectID),
			zap.Int("chunks", len(chunks)),
		)
	}
	return nil
}

// Rebuild re-indexes every record across every domain. At most one rebuild
// runs at a time: when one is already active the call returns immediately
// with started=false and no error. onProgress, when non-nil, receives
// monotonically increasing (current, total) updates. Cancelling ctx stops
// the rebuild between records; already indexed records stay valid.
func (p *Pipeline) Rebuild(ctx context.Context, onProgress func(current, total int)) (started bool, err error) {
	p.rebuildMu.Lock()
	if p.rebuilding {
		p.rebuildMu.Unlock()
		return false, nil
	}
	p.rebuilding = true
	p.current, p.total = 0, 0
	p.rebuildMu.Unlock()

	defer func() {
		p.rebuildMu.Lock()
		p.rebuilding = false
		p.rebuildMu.Unlock()
	}()

	counts, err := p.retriever.CountByDomain(ctx)
	if err != nil {
		return true, fmt.Errorf("failed to count records: %w", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	p.setProgress(0, total)
	if onProgress != nil {
		onProgress(0, total)
	}
	if total == 0 {
		return true, nil
	}

	current := 0
	for _, domain := range models.AllDomains() {
		if counts[domain] == 0 {
			continue
		}
		recs, err := p.retriever.GetRecords(ctx, domain, nil, nil)
		if err != nil {
			return true, fmt.Errorf("failed to load %s: %w", domain, err)
		}
		for _, rec := range recs {
			if err := ctx.Err(); err != nil {
				return true, err
			}
			if err := p.IndexRecord(ctx, rec); err != nil {
				return true, fmt.Errorf("failed to index %s(%s): %w", rec.ObjectType, rec.ObjectID, err)
			}
			current++
			p.setProgress(current, total)
			if onProgress != nil {
				onProgress(current, total)
			}
		}
	}
	if p.logger != nil {
		p.logger.Info("rebuild complete", zap.Int("records", current))
	}
	return true, nil
}

func (p *Pipeline) setProgress(current, total int) {
	p.rebuildMu.Lock()
	p.current, p.total = current, total
	p.rebuildMu.Unlock()
}

// Rebuilding reports whether a rebuild is currently active.
func (p *Pipeline) Rebuilding() bool {
	p.rebuildMu.Lock()
	defer p.rebuildMu.Unlock()
	return p.rebuilding
}

// Progress returns the current rebuild progress.
func (p *Pipeline) Progress() (current, total int) {
	p.rebuildMu.Lock()
	defer p.rebuildMu.Unlock()
	return p.current, p.total
}

// IndexingStatus compares per-domain record counts against indexed object
// counts. An empty corpus reports full coverage.
func (p *Pipeline) IndexingStatus(ctx context.Context) (*models.IndexingStatus, error) {
	totals, err := p.retriever.CountByDomain(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	indexed, err := p.store.CountObjectsByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count embeddings: %w", err)
	}

	status := &models.IndexingStatus{
		Domains:    make(map[string]models.DomainCoverage),
		Rebuilding: p.Rebuilding(),
	}
	sumIndexed, sumTotal := 0, 0
	for _, domain := range models.AllDomains() {
		total := totals[domain]
		if total == 0 && indexed[domain] == 0 {
			continue
		}
		n := indexed[domain]
		if n > total {
			// Stale embeddings for deleted records; cap so coverage stays in [0,1].
			n = total
		}
		status.Domains[domain] = models.DomainCoverage{Indexed: n, Total: total}
		sumIndexed += n
		sumTotal += total
	}
	if sumTotal == 0 {
		status.OverallCoverage = 1.0
	} else {
		status.OverallCoverage = float64(sumIndexed) / float64(sumTotal)
	}
	return status, nil
}

// Search embeds the query once and ranks every stored vector by cosine
// similarity, restricted to domains when non-empty. Stored zero vectors
// (degraded indexing) are excluded from ranking. When the query vector
// itself is zero the embedding backend is down, and search falls back to
// the keyword index so retrieval keeps recall.
func (p *Pipeline) Search(ctx context.Context, query string, domains []string, k int, minSimilarity float64) ([]*models.SearchResult, error) {
	if k <= 0 {
		k = p.config.DefaultLimit
	}
	if k > p.config.MaxLimit {
		k = p.config.MaxLimit
	}

	queryVec, err := p.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if vector.IsZero(queryVec) {
		return p.keywordFallback(ctx, query, domains, k)
	}

	embs, err := p.loadEmbeddings(ctx, domains)
	if err != nil {
		return nil, err
	}

	results := make([]*models.SearchResult, 0, len(embs))
	for _, emb := range embs {
		if vector.IsZero(emb.Vector) {
			continue
		}
		sim, err := vector.CosineSimilarity(queryVec, emb.Vector)
		if err != nil {
			return nil, fmt.Errorf("similarity against %s: %w", emb.ID, err)
		}
		if sim < minSimilarity {
			continue
		}
		results = append(results, &models.SearchResult{
			ID:         emb.ID,
			ObjectType: emb.ObjectType,
			ObjectID:   emb.ObjectID,
			Text:       emb.ChunkText,
			Similarity: sim,
			CreatedAt:  emb.CreatedAt,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// embedQuery embeds the query text, coalescing concurrent identical queries
// into one backend call.
func (p *Pipeline) embedQuery(ctx context.Context, query string) ([]float32, error) {
	v, err, _ := p.queryGroup.Do(query, func() (interface{}, error) {
		return p.embedder.Embed(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return v.([]float32), nil
}

func (p *Pipeline) loadEmbeddings(ctx context.Context, domains []string) ([]*models.Embedding, error) {
	if len(domains) == 0 {
		embs, err := p.store.GetAll(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load embeddings: %w", err)
		}
		return embs, nil
	}
	var out []*models.Embedding
	for _, domain := range domains {
		embs, err := p.store.GetAll(ctx, domain)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s embeddings: %w", domain, err)
		}
		out = append(out, embs...)
	}
	return out, nil
}

// keywordFallback serves a search from the keyword index with similarity 0,
// used when the embedding backend is degraded.
func (p *Pipeline) keywordFallback(ctx context.Context, query string, domains []string, k int) ([]*models.SearchResult, error) {
	if p.logger != nil {
		p.logger.Warn("embedding degraded, serving keyword fallback", zap.String("query", query))
	}
	hits, err := p.keyword.Search(ctx, query, domains, k)
	if err != nil {
		return nil, fmt.Errorf("keyword fallback failed: %w", err)
	}
	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	embs, err := p.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback chunks: %w", err)
	}
	results := make([]*models.SearchResult, 0, len(embs))
	for _, emb := range embs {
		results = append(results, &models.SearchResult{
			ID:         emb.ID,
			ObjectType: emb.ObjectType,
			ObjectID:   emb.ObjectID,
			Text:       emb.ChunkText,
			Similarity: 0,
			CreatedAt:  emb.CreatedAt,
		})
	}
	return results, nil
}

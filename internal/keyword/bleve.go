package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func chunkMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so short personal
	// notes match the exact words the user typed.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("object_type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("object_id", keywordFieldMapping)

	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// reused; remove the directory to force a rebuild after a mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open keyword index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}
	index, err := bleve.New(path, chunkMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemIndex creates an in-memory Bleve index, for tests and ephemeral runs.
func NewMemIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(chunkMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory keyword index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces one chunk entry.
func (b *BleveIndex) Index(ctx context.Context, id string, entry *Entry) error {
	return b.index.Index(id, entry)
}

// Delete removes entries by ID.
func (b *BleveIndex) Delete(ctx context.Context, ids []string) error {
	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return b.index.Batch(batch)
}

// DeleteAll wipes the index by deleting every known document.
func (b *BleveIndex) DeleteAll(ctx context.Context) error {
	query := bleve.NewMatchAllQuery()
	req := bleve.NewSearchRequest(query)
	req.Size = 10000
	for {
		results, err := b.index.Search(req)
		if err != nil {
			return fmt.Errorf("keyword wipe search failed: %w", err)
		}
		if len(results.Hits) == 0 {
			return nil
		}
		batch := b.index.NewBatch()
		for _, hit := range results.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("keyword wipe failed: %w", err)
		}
	}
}

// Search runs a match query over chunk text, restricted to objectTypes when
// non-empty.
func (b *BleveIndex) Search(ctx context.Context, query string, objectTypes []string, limit int) ([]*Result, error) {
	match := bleve.NewMatchQuery(query)
	match.SetField("text")

	var q blevequery.Query = match
	if len(objectTypes) > 0 {
		typeQueries := make([]blevequery.Query, len(objectTypes))
		for i, objectType := range objectTypes {
			tq := bleve.NewTermQuery(objectType)
			tq.SetField("object_type")
			typeQueries[i] = tq
		}
		q = bleve.NewConjunctionQuery(match, bleve.NewDisjunctionQuery(typeQueries...))
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Close closes the underlying index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

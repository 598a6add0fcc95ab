package models

import (
	"fmt"
	"time"
)

// SearchResult is a single retrieval hit against the embedding store.
type SearchResult struct {
	ID         string    `json:"id"`
	ObjectType string    `json:"object_type"`
	ObjectID   string    `json:"object_id"`
	Text       string    `json:"text"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}

// Citation returns the inline citation form "objectType(objectId)".
func (r *SearchResult) Citation() string {
	return fmt.Sprintf("%s(%s)", r.ObjectType, r.ObjectID)
}

// RagContext is the prompt-ready retrieval context for a query.
type RagContext struct {
	Query    string          `json:"query"`
	Results  []*SearchResult `json:"results"`
	Block    string          `json:"block"`
	Degraded bool            `json:"degraded,omitempty"`
}

// DomainCoverage holds indexed vs. total record counts for one domain.
type DomainCoverage struct {
	Indexed int `json:"indexed"`
	Total   int `json:"total"`
}

// IndexingStatus reports embedding coverage per domain.
// OverallCoverage is sum(indexed)/sum(total), or 1.0 when there are no records.
type IndexingStatus struct {
	Domains         map[string]DomainCoverage `json:"domains"`
	OverallCoverage float64                   `json:"overall_coverage"`
	Rebuilding      bool                      `json:"rebuilding"`
}

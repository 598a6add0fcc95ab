// Package records provides read access to stored life records, one call per
// domain tag. The assistant core treats this as its sole read path into the
// record store.
package records

import (
	"context"
	"time"

	"github.com/kioku-labs/kioku/internal/models"
)

// Retriever reads records from the underlying record store.
type Retriever interface {
	// GetRecords returns records for one domain, optionally restricted to
	// [start, end]. A nil bound means unbounded on that side.
	GetRecords(ctx context.Context, domain string, start, end *time.Time) ([]*models.Record, error)
	// CountByDomain returns total record counts per domain tag.
	CountByDomain(ctx context.Context) (map[string]int, error)

	Close() error
}

package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/pkg/utils"
)

// maxBlockChunkLen caps how much of a chunk goes into the prompt block.
const maxBlockChunkLen = 500

// BuildContext retrieves the top chunks for a query and formats them into a
// prompt-ready block with inline citations. Empty domains means unrestricted.
func (p *Pipeline) BuildContext(ctx context.Context, query string, domains []string, k int) (*models.RagContext, error) {
	results, err := p.Search(ctx, query, domains, k, p.config.MinSimilarity)
	if err != nil {
		return nil, err
	}
	rc := &models.RagContext{
		Query:    query,
		Results:  results,
		Degraded: p.Degraded(),
	}
	if len(results) == 0 {
		return rc, nil
	}

	var sb strings.Builder
	sb.WriteString("Relevant records:\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "[%d] %s: %s\n", i+1, r.Citation(), utils.Truncate(strings.TrimSpace(r.Text), maxBlockChunkLen))
	}
	rc.Block = sb.String()
	return rc, nil
}

// Package chunker splits record text into overlapping passages sized for
// the embedding model.
package chunker

import "github.com/kioku-labs/kioku/internal/models"

// Chunker splits text into overlapping character-based chunks.
// Size is the maximum chunk length in runes; Overlap is how many runes
// consecutive chunks share.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. Size must be positive; overlap is clamped into
// [0, size-1] so the window always advances.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits text into ordered chunks for the given record. Every rune of
// the input appears in at least one chunk. Empty input yields no chunks;
// input within the chunk size yields exactly one.
func (c *Chunker) Chunk(objectType, objectID, text string) []models.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	step := c.size - c.overlap
	if step < 1 {
		step = 1
	}
	chunks := make([]models.Chunk, 0, (len(runes)+step-1)/step)
	for i := 0; i < len(runes); i += step {
		end := i + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			ObjectType: objectType,
			ObjectID:   objectID,
			Text:       string(runes[i:end]),
			ChunkIndex: len(chunks),
			Overlap:    c.overlap,
		})
		if end >= len(runes) {
			break
		}
	}
	return chunks
}

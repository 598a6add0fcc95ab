package chunker

import (
	"strings"
	"testing"
)

func TestChunker_Chunk(t *testing.T) {
	c := New(10, 3)
	chunks := c.Chunk("journal_entries", "j1", strings.Repeat("abcdefghij", 5))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ObjectType != "journal_entries" || ch.ObjectID != "j1" {
			t.Errorf("chunk %d has wrong source: %s(%s)", i, ch.ObjectType, ch.ObjectID)
		}
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d ChunkIndex=%d", i, ch.ChunkIndex)
		}
		if len([]rune(ch.Text)) > 10 {
			t.Errorf("chunk %d exceeds size: %d runes", i, len([]rune(ch.Text)))
		}
	}
}

// Concatenating chunks with the overlap stripped must reconstruct the input.
func TestChunker_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{"no overlap", 4, 0, "the quick brown fox jumps"},
		{"with overlap", 8, 3, "pay rent, buy groceries, call the dentist"},
		{"overlap one", 2, 1, "abcdef"},
		{"multibyte", 5, 2, "味噌汁を作って、散歩に行った"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := New(tt.size, tt.overlap).Chunk("meal_records", "m1", tt.text)
			var sb strings.Builder
			for i, ch := range chunks {
				runes := []rune(ch.Text)
				if i > 0 {
					runes = runes[tt.overlap:]
				}
				sb.WriteString(string(runes))
			}
			if sb.String() != tt.text {
				t.Errorf("round trip = %q, want %q", sb.String(), tt.text)
			}
		})
	}
}

func TestChunker_Empty(t *testing.T) {
	if chunks := New(10, 2).Chunk("mood_records", "m1", ""); chunks != nil {
		t.Errorf("empty input should yield no chunks, got %d", len(chunks))
	}
}

func TestChunker_SingleChunk(t *testing.T) {
	chunks := New(100, 10).Chunk("task_records", "t1", "short note")
	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short note" {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
}

// Overlap >= size must not loop forever; the window always advances.
func TestChunker_DegenerateOverlap(t *testing.T) {
	chunks := New(3, 5).Chunk("habit_records", "h1", "abcdefgh")
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	seen := make(map[int]bool)
	for _, ch := range chunks {
		if seen[ch.ChunkIndex] {
			t.Fatalf("duplicate chunk index %d", ch.ChunkIndex)
		}
		seen[ch.ChunkIndex] = true
	}
}

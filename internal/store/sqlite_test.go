package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kioku-labs/kioku/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "embeddings.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testEmbedding(id, objectType, objectID string, vec []float32) *models.Embedding {
	return &models.Embedding{
		ID:         id,
		ObjectType: objectType,
		ObjectID:   objectID,
		ChunkText:  "chunk for " + objectID,
		Vector:     vec,
	}
}

func TestSQLiteStore_PutGetAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testEmbedding("e1", "finance_records", "f1", []float32{0.1, 0.2, 0.3})); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, testEmbedding("e2", "meal_records", "m1", []float32{0.4, 0.5, 0.6})); err != nil {
		t.Fatalf("Put: %v", err)
	}

	all, err := s.GetAll(ctx, "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAll returned %d embeddings, want 2", len(all))
	}

	finance, err := s.GetAll(ctx, "finance_records")
	if err != nil {
		t.Fatalf("GetAll(finance_records): %v", err)
	}
	if len(finance) != 1 || finance[0].ID != "e1" {
		t.Fatalf("GetAll(finance_records) = %v", finance)
	}
	want := []float32{0.1, 0.2, 0.3}
	for i, v := range finance[0].Vector {
		if v != want[i] {
			t.Errorf("vector[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestSQLiteStore_DimensionMismatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testEmbedding("e1", "journal_entries", "j1", []float32{1, 2, 3})); err != nil {
		t.Fatalf("Put: %v", err)
	}
	err := s.Put(ctx, testEmbedding("e2", "journal_entries", "j2", []float32{1, 2}))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Put with wrong dimension: err = %v, want ErrDimensionMismatch", err)
	}

	// Wipe and re-index with the new dimension must succeed.
	if err := s.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if err := s.Put(ctx, testEmbedding("e3", "journal_entries", "j2", []float32{1, 2})); err != nil {
		t.Fatalf("Put after wipe: %v", err)
	}
}

func TestSQLiteStore_DimensionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "embeddings.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, testEmbedding("e1", "sleep_records", "s1", []float32{1, 2, 3, 4})); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	err = reopened.Put(ctx, testEmbedding("e2", "sleep_records", "s2", []float32{1, 2}))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("reopened store accepted wrong dimension: %v", err)
	}
}

func TestSQLiteStore_DeleteByObject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"e1", "e2"} {
		emb := testEmbedding(id, "exercise_records", "x1", []float32{float32(i), 1})
		if err := s.Put(ctx, emb); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Put(ctx, testEmbedding("e3", "exercise_records", "x2", []float32{2, 2})); err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteByObject(ctx, "exercise_records", "x1")
	if err != nil {
		t.Fatalf("DeleteByObject: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("DeleteByObject removed %d ids, want 2", len(removed))
	}
	all, err := s.GetAll(ctx, "exercise_records")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ObjectID != "x2" {
		t.Fatalf("after delete, remaining = %v", all)
	}
}

func TestSQLiteStore_Counts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Two chunks of one finance record, one chunk of a meal record.
	batch := []*models.Embedding{
		testEmbedding("e1", "finance_records", "f1", []float32{1, 0}),
		testEmbedding("e2", "finance_records", "f1", []float32{0, 1}),
		testEmbedding("e3", "meal_records", "m1", []float32{1, 1}),
	}
	if err := s.PutBatch(ctx, batch); err != nil {
		t.Fatalf("PutBatch: %v", err)
	}

	byType, err := s.CountByType(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if byType["finance_records"] != 2 || byType["meal_records"] != 1 {
		t.Errorf("CountByType = %v", byType)
	}

	objects, err := s.CountObjectsByType(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if objects["finance_records"] != 1 || objects["meal_records"] != 1 {
		t.Errorf("CountObjectsByType = %v", objects)
	}
}

func TestSQLiteStore_OrderedByRecency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := testEmbedding("e1", "event_records", "ev1", []float32{1, 0})
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := testEmbedding("e2", "event_records", "ev2", []float32{0, 1})
	newer.CreatedAt = time.Now()
	if err := s.Put(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, newer); err != nil {
		t.Fatal(err)
	}

	all, err := s.GetAll(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "e2" {
		t.Fatalf("expected newest first, got %v", []string{all[0].ID, all[1].ID})
	}
}

func TestSQLiteStore_GetByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"e1", "e2", "e3"} {
		if err := s.Put(ctx, testEmbedding(id, "study_records", "s"+id, []float32{1, 2})); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetByIDs(ctx, []string{"e3", "missing", "e1"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 2 || got[0].ID != "e3" || got[1].ID != "e1" {
		ids := make([]string, len(got))
		for i, e := range got {
			ids[i] = e.ID
		}
		t.Fatalf("GetByIDs order = %v, want [e3 e1]", ids)
	}
}

func TestVectorCodecRoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 0, 3.75}
	out := bytesToVector(vectorToBytes(in))
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("codec[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

package records

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteRetriever_GetRecords(t *testing.T) {
	r, err := NewSQLiteRetriever(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("failed to open retriever: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	now := time.Now()
	insert := func(objectType, objectID, content string, createdAt time.Time) {
		t.Helper()
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO records (object_type, object_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			objectType, objectID, content, createdAt, createdAt)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	insert("finance_records", "f1", "rent payment 1200", now.Add(-48*time.Hour))
	insert("finance_records", "f2", "groceries 85", now)
	insert("meal_records", "m1", "miso soup for dinner", now)

	all, err := r.GetRecords(ctx, "finance_records", nil, nil)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetRecords returned %d records, want 2", len(all))
	}

	start := now.Add(-time.Hour)
	recent, err := r.GetRecords(ctx, "finance_records", &start, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].ObjectID != "f2" {
		t.Fatalf("time-bounded GetRecords = %v", recent)
	}

	counts, err := r.CountByDomain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["finance_records"] != 2 || counts["meal_records"] != 1 {
		t.Errorf("CountByDomain = %v", counts)
	}
}

func TestSQLiteRetriever_EmptyDomain(t *testing.T) {
	r, err := NewSQLiteRetriever(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	recs, err := r.GetRecords(context.Background(), "travel_records", nil, nil)
	if err != nil {
		t.Fatalf("GetRecords on empty domain: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
}

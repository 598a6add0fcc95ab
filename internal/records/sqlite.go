package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kioku-labs/kioku/internal/models"
)

// SQLiteRetriever implements Retriever over the record store database.
// The schema is owned by the record store; this package only reads it and
// creates the table when absent so a fresh install starts empty.
type SQLiteRetriever struct {
	db *sql.DB
}

// NewSQLiteRetriever opens the record database at dbPath.
func NewSQLiteRetriever(dbPath string) (*SQLiteRetriever, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open record database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		object_type TEXT NOT NULL,
		object_id TEXT NOT NULL,
		title TEXT,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (object_type, object_id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_type_created ON records(object_type, created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize record schema: %w", err)
	}
	return &SQLiteRetriever{db: db}, nil
}

// GetRecords returns records for one domain within the optional time bounds.
func (r *SQLiteRetriever) GetRecords(ctx context.Context, domain string, start, end *time.Time) ([]*models.Record, error) {
	query := `SELECT object_type, object_id, title, content, metadata, created_at, updated_at
		FROM records WHERE object_type = ?`
	args := []interface{}{domain}
	if start != nil {
		query += ` AND created_at >= ?`
		args = append(args, *start)
	}
	if end != nil {
		query += ` AND created_at <= ?`
		args = append(args, *end)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		var rec models.Record
		var title, metadataJSON sql.NullString
		if err := rows.Scan(&rec.ObjectType, &rec.ObjectID, &title, &rec.Content, &metadataJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Title = title.String
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// CountByDomain returns total record counts per domain tag. Domains with no
// records are absent from the map.
func (r *SQLiteRetriever) CountByDomain(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT object_type, COUNT(*) FROM records GROUP BY object_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var domain string
		var n int
		if err := rows.Scan(&domain, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[domain] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database.
func (r *SQLiteRetriever) Close() error {
	return r.db.Close()
}

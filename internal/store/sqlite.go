// Package store provides the SQLite implementation of the embedding store.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kioku-labs/kioku/internal/models"
)

// SQLiteStore implements Store using SQLite. Vectors are stored as
// little-endian float32 BLOBs.
type SQLiteStore struct {
	db *sql.DB

	mu  sync.Mutex
	dim int // established vector dimension; 0 until the first Put
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.loadDimension(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
		id TEXT PRIMARY KEY,
		object_type TEXT NOT NULL,
		object_id TEXT NOT NULL,
		chunk_text TEXT NOT NULL,
		vector BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_embeddings_object ON embeddings(object_type, object_id);
	CREATE INDEX IF NOT EXISTS idx_embeddings_type ON embeddings(object_type);
	`
	_, err := db.Exec(schema)
	return err
}

// loadDimension recovers the established dimension from any existing row.
func (s *SQLiteStore) loadDimension() error {
	var blob []byte
	err := s.db.QueryRow(`SELECT vector FROM embeddings LIMIT 1`).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stored dimension: %w", err)
	}
	s.dim = len(blob) / 4
	return nil
}

// checkDimension validates the vector length against the established
// dimension, establishing it on first use.
func (s *SQLiteStore) checkDimension(vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dim == 0 {
		s.dim = len(vec)
		return nil
	}
	if len(vec) != s.dim {
		return fmt.Errorf("%w: got %d, store has %d", ErrDimensionMismatch, len(vec), s.dim)
	}
	return nil
}

// Put inserts one embedding.
func (s *SQLiteStore) Put(ctx context.Context, emb *models.Embedding) error {
	if err := s.checkDimension(emb.Vector); err != nil {
		return err
	}
	if emb.CreatedAt.IsZero() {
		emb.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embeddings (id, object_type, object_id, chunk_text, vector, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		emb.ID, emb.ObjectType, emb.ObjectID, emb.ChunkText, vectorToBytes(emb.Vector), emb.CreatedAt,
	)
	return err
}

// PutBatch inserts all embeddings in one transaction so a record's chunk set
// is committed atomically.
func (s *SQLiteStore) PutBatch(ctx context.Context, embs []*models.Embedding) error {
	if len(embs) == 0 {
		return nil
	}
	for _, emb := range embs {
		if err := s.checkDimension(emb.Vector); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings (id, object_type, object_id, chunk_text, vector, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	now := time.Now()
	for _, emb := range embs {
		if emb.CreatedAt.IsZero() {
			emb.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			emb.ID, emb.ObjectType, emb.ObjectID, emb.ChunkText, vectorToBytes(emb.Vector), emb.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert embedding: %w", err)
		}
	}
	return tx.Commit()
}

// GetAll returns all embeddings, restricted to objectType when non-empty.
// Results are ordered by creation time descending so similarity ties break
// toward the most recent.
func (s *SQLiteStore) GetAll(ctx context.Context, objectType string) ([]*models.Embedding, error) {
	query := `SELECT id, object_type, object_id, chunk_text, vector, created_at
		FROM embeddings ORDER BY created_at DESC`
	args := []interface{}{}
	if objectType != "" {
		query = `SELECT id, object_type, object_id, chunk_text, vector, created_at
			FROM embeddings WHERE object_type = ? ORDER BY created_at DESC`
		args = append(args, objectType)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var out []*models.Embedding
	for rows.Next() {
		var emb models.Embedding
		var blob []byte
		if err := rows.Scan(&emb.ID, &emb.ObjectType, &emb.ObjectID, &emb.ChunkText, &blob, &emb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		emb.Vector = bytesToVector(blob)
		out = append(out, &emb)
	}
	return out, rows.Err()
}

// GetByIDs returns embeddings for the given row IDs; unknown IDs are skipped.
func (s *SQLiteStore) GetByIDs(ctx context.Context, ids []string) ([]*models.Embedding, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, object_type, object_id, chunk_text, vector, created_at
		 FROM embeddings WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings by id: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Embedding, len(ids))
	for rows.Next() {
		var emb models.Embedding
		var blob []byte
		if err := rows.Scan(&emb.ID, &emb.ObjectType, &emb.ObjectID, &emb.ChunkText, &blob, &emb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		emb.Vector = bytesToVector(blob)
		byID[emb.ID] = &emb
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Preserve the order of the requested IDs.
	out := make([]*models.Embedding, 0, len(byID))
	for _, id := range ids {
		if emb, ok := byID[id]; ok {
			out = append(out, emb)
		}
	}
	return out, nil
}

// DeleteByObject removes every embedding for one (objectType, objectID) and
// returns the removed row IDs.
func (s *SQLiteStore) DeleteByObject(ctx context.Context, objectType, objectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM embeddings WHERE object_type = ? AND object_id = ?`, objectType, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query embedding ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan embedding id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM embeddings WHERE object_type = ? AND object_id = ?`, objectType, objectID); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteAll wipes the store and resets the established dimension.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return err
	}
	s.mu.Lock()
	s.dim = 0
	s.mu.Unlock()
	return nil
}

// CountByType returns embedding row counts per object type.
func (s *SQLiteStore) CountByType(ctx context.Context) (map[string]int, error) {
	return s.countGrouped(ctx, `SELECT object_type, COUNT(*) FROM embeddings GROUP BY object_type`)
}

// CountObjectsByType returns distinct indexed object counts per object type.
func (s *SQLiteStore) CountObjectsByType(ctx context.Context) (map[string]int, error) {
	return s.countGrouped(ctx, `SELECT object_type, COUNT(DISTINCT object_id) FROM embeddings GROUP BY object_type`)
}

func (s *SQLiteStore) countGrouped(ctx context.Context, query string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count embeddings: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var objectType string
		var n int
		if err := rows.Scan(&objectType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[objectType] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func vectorToBytes(vec []float32) []byte {
	const size = 4
	out := make([]byte, len(vec)*size)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToVector(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

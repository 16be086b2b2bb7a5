// Package metastore provides the relational metadata store for indexed
// documents, backed by SQLite.
//
// The store is authoritative for file metadata: search hits for the file
// source overwrite their path and timestamp from here, since vector
// payloads can go stale when files move after indexing.
package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when no record exists for a document id.
var ErrNotFound = errors.New("document record not found")

// FileRecord is the relational metadata for one indexed file document.
type FileRecord struct {
	DocID     string
	Path      string
	UpdatedAt time.Time
	Preview   string
}

// Store is a SQLite-backed metadata store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the metadata database under dataDir.
// If dataDir is empty, defaults to ~/.recall/data.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// WAL mode for concurrent readers during indexing.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			doc_id     TEXT PRIMARY KEY,
			path       TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			preview    TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// Get returns the record for a document id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, docID string) (*FileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT doc_id, path, updated_at, preview FROM documents WHERE doc_id = ?`, docID)

	var rec FileRecord
	err := row.Scan(&rec.DocID, &rec.Path, &rec.UpdatedAt, &rec.Preview)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", docID, err)
	}
	return &rec, nil
}

// Upsert writes or replaces the record for a document id. Callers mark
// documents here after a successful vector store upsert; the engine itself
// only reads.
func (s *Store) Upsert(ctx context.Context, rec FileRecord) error {
	if rec.DocID == "" {
		return errors.New("doc id required")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, path, updated_at, preview)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			path = excluded.path,
			updated_at = excluded.updated_at,
			preview = excluded.preview
	`, rec.DocID, rec.Path, rec.UpdatedAt, rec.Preview)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", rec.DocID, err)
	}
	return nil
}

// Delete removes the record for a document id. Missing records are not an
// error.
func (s *Store) Delete(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", docID, err)
	}
	return nil
}

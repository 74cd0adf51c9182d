// Package docstore implements the Document Store contract of spec.md §3
// and §4: a key/value mapping from DocumentId to gs1.ResolverDocument,
// backed by SQLite with a JSON body column, exactly as the teacher's
// store package wraps mattn/go-sqlite3 with WAL mode and a bounded
// connection pool.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gs1resolver/resolver/gs1"
	"github.com/gs1resolver/resolver/resolvererr"
)

// Store wraps the SQLite database backing the resolver and data-entry
// services.
type Store struct {
	db     *sql.DB
	closed bool
}

// New opens (or creates) a SQLite database at dbPath and applies the
// document-store schema.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.closed = true
	return s.db.Close()
}

// Get fetches the document stored under id along with its current
// version token for optimistic concurrency. Returns
// resolvererr.ErrDocumentNotFound if no such document exists.
func (s *Store) Get(ctx context.Context, id string) (*gs1.ResolverDocument, int64, error) {
	if s.closed {
		return nil, 0, resolvererr.ErrStoreClosed
	}

	var body string
	var version int64
	row := s.db.QueryRowContext(ctx, "SELECT body, version FROM documents WHERE id = ?", id)
	if err := row.Scan(&body, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, resolvererr.ErrDocumentNotFound
		}
		return nil, 0, fmt.Errorf("docstore: reading document %q: %w", id, err)
	}

	var doc gs1.ResolverDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, 0, fmt.Errorf("docstore: decoding document %q: %w", id, err)
	}
	return &doc, version, nil
}

// Upsert writes doc. expectedVersion is the version the caller last read
// (0 means "no prior read — create or overwrite unconditionally"). If the
// document exists and its current version does not match
// expectedVersion, Upsert returns resolvererr.ErrVersionConflict so the
// caller's bounded retry loop (spec.md §4.4/§5) can re-read and retry.
// Returns the new version and whether the row was newly created.
func (s *Store) Upsert(ctx context.Context, doc gs1.ResolverDocument, expectedVersion int64) (int64, bool, error) {
	if s.closed {
		return 0, false, resolvererr.ErrStoreClosed
	}

	requestID := uuid.New().String()

	body, err := json.Marshal(doc)
	if err != nil {
		return 0, false, fmt.Errorf("docstore: encoding document %q: %w", doc.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("docstore: begin upsert: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int64
	err = tx.QueryRowContext(ctx, "SELECT version FROM documents WHERE id = ?", doc.ID).Scan(&currentVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO documents (id, body, version, last_request_id) VALUES (?, ?, 1, ?)",
			doc.ID, string(body), requestID); err != nil {
			return 0, false, fmt.Errorf("docstore: inserting document %q: %w", doc.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("docstore: committing insert: %w", err)
		}
		slog.Info("document created", "document_id", doc.ID, "request_id", requestID, "version", 1)
		return 1, true, nil
	case err != nil:
		return 0, false, fmt.Errorf("docstore: reading version for %q: %w", doc.ID, err)
	}

	if expectedVersion != 0 && expectedVersion != currentVersion {
		return 0, false, resolvererr.ErrVersionConflict
	}

	newVersion := currentVersion + 1
	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET body = ?, version = ?, updated_at = CURRENT_TIMESTAMP, last_request_id = ? WHERE id = ?",
		string(body), newVersion, requestID, doc.ID); err != nil {
		return 0, false, fmt.Errorf("docstore: updating document %q: %w", doc.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("docstore: committing update: %w", err)
	}
	slog.Info("document updated", "document_id", doc.ID, "request_id", requestID, "version", newVersion)
	return newVersion, false, nil
}

// Delete removes the document stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.closed {
		return resolvererr.ErrStoreClosed
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("docstore: deleting document %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("docstore: checking delete result for %q: %w", id, err)
	}
	if n == 0 {
		return resolvererr.ErrDocumentNotFound
	}
	return nil
}

// ListIDs returns every stored document id. Partition-key choice is the
// document id itself (spec.md §9 open question), so this is a full scan
// of the documents table.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	if s.closed {
		return nil, resolvererr.ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM documents ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("docstore: listing ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("docstore: scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

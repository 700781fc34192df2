// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog records downloaded PDFs and their extraction state in a
// SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/datasetkit/pkg/types"
)

// Store manages the catalog database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path, creating its parent
// directory and the schema if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			title TEXT,
			source_url TEXT,
			downloaded_at TEXT,
			extracted INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_topic ON documents(topic)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts doc or refreshes its metadata. The original download time
// and the extracted flag of an existing row are kept.
func (s *Store) Record(ctx context.Context, doc types.Document) error {
	downloaded := doc.DownloadedAt
	if downloaded.IsZero() {
		downloaded = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, topic, title, source_url, downloaded_at, extracted)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			topic = excluded.topic,
			title = excluded.title,
			source_url = excluded.source_url`,
		doc.Path, doc.Topic, doc.Title, doc.SourceURL,
		downloaded.UTC().Format(time.RFC3339Nano), doc.Extracted,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", doc.Path, err)
	}
	return nil
}

// MarkExtracted flags the documents at paths as extracted and returns how
// many catalog rows matched. Paths not in the catalog are ignored.
func (s *Store) MarkExtracted(ctx context.Context, paths []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE documents SET extracted = 1 WHERE path = ?`)
	if err != nil {
		return 0, fmt.Errorf("preparing update: %w", err)
	}
	defer stmt.Close()

	var matched int
	for _, p := range paths {
		res, err := stmt.ExecContext(ctx, p)
		if err != nil {
			return 0, fmt.Errorf("marking %s: %w", p, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		matched += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return matched, nil
}

// ListOptions filters List results.
type ListOptions struct {
	Topic       string
	PendingOnly bool
}

// List returns catalog documents ordered by topic and path.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Document, error) {
	var (
		where []string
		args  []any
	)
	if opts.Topic != "" {
		where = append(where, "topic = ?")
		args = append(args, opts.Topic)
	}
	if opts.PendingOnly {
		where = append(where, "extracted = 0")
	}

	query := `SELECT path, topic, title, source_url, downloaded_at, extracted FROM documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY topic, path"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var (
			doc        types.Document
			title, src sql.NullString
			downloaded sql.NullString
		)
		if err := rows.Scan(&doc.Path, &doc.Topic, &title, &src, &downloaded, &doc.Extracted); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Title = title.String
		doc.SourceURL = src.String
		if downloaded.Valid {
			if t, err := time.Parse(time.RFC3339Nano, downloaded.String); err == nil {
				doc.DownloadedAt = t
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

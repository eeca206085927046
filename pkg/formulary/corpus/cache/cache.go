// Package cache materializes a single-pass corpus source into a SQLite file
// so the engine's multiple passes can re-iterate the normalized token
// sequences without re-reading or re-tokenizing the raw input.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"

	_ "modernc.org/sqlite"

	"github.com/cognicore/formulary/pkg/formulary/corpus"
	"github.com/cognicore/formulary/pkg/formulary/internalerr"
)

// Source is a restartable corpus source backed by a SQLite file.
type Source struct {
	db *sql.DB
}

// Materialize drains src into a new cache at path and returns the cache as a
// restartable source. Bad documents in src are skipped and counted against
// nothing; any other source error aborts.
func Materialize(ctx context.Context, src corpus.Source, path string) (*Source, error) {
	s, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}

	it, err := src.Docs()
	if err != nil {
		s.Close()
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.Close()
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO docs (doc_id, words) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		s.Close()
		return nil, err
	}

	for {
		doc, err := it.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, internalerr.ErrBadDocument) {
			continue
		}
		if err != nil {
			stmt.Close()
			tx.Rollback()
			s.Close()
			return nil, err
		}
		words, err := json.Marshal(doc.Words)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			s.Close()
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, string(words)); err != nil {
			stmt.Close()
			tx.Rollback()
			s.Close()
			return nil, err
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens an existing cache (or creates an empty one) at path.
func Open(ctx context.Context, path string) (*Source, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
CREATE TABLE IF NOT EXISTS docs (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	doc_id TEXT NOT NULL,
	words TEXT NOT NULL
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Source{db: db}, nil
}

// Close closes the underlying database.
func (s *Source) Close() error {
	return s.db.Close()
}

// Len returns the number of cached documents.
func (s *Source) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM docs").Scan(&n)
	return n, err
}

// Docs starts a fresh traversal in insertion order.
func (s *Source) Docs() (corpus.Iterator, error) {
	rows, err := s.db.Query("SELECT doc_id, words FROM docs ORDER BY seq")
	if err != nil {
		return nil, err
	}
	return &cacheIterator{rows: rows}, nil
}

type cacheIterator struct {
	rows *sql.Rows
}

func (it *cacheIterator) Next() (corpus.Document, error) {
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			it.rows.Close()
			return corpus.Document{}, err
		}
		it.rows.Close()
		return corpus.Document{}, io.EOF
	}
	var id, encoded string
	if err := it.rows.Scan(&id, &encoded); err != nil {
		it.rows.Close()
		return corpus.Document{}, err
	}
	var words []string
	if err := json.Unmarshal([]byte(encoded), &words); err != nil {
		return corpus.Document{}, err
	}
	return corpus.Document{ID: id, Words: words}, nil
}

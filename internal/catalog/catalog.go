// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists harvested records in a local SQLite database so
// datasets can be inspected with ordinary SQL tooling. Each run upserts by
// PMID; there is no cross-run deduplication or resume logic.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

// Store manages the records catalog database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path, creating the schema
// and parent directories if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
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
		`CREATE TABLE IF NOT EXISTS records (
			pmid TEXT PRIMARY KEY,
			title TEXT,
			abstract TEXT,
			authors TEXT,
			journal TEXT,
			year INTEGER,
			affiliation TEXT,
			harvested_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_year ON records(year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveAll upserts the records in one transaction. A record with a PMID
// already present replaces the stored row.
func (s *Store) SaveAll(ctx context.Context, records []types.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (pmid, title, abstract, authors, journal, year, affiliation, harvested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		authorsJSON, _ := json.Marshal(r.Authors)
		_, err := stmt.ExecContext(ctx,
			r.PMID, r.Title, r.Abstract, string(authorsJSON),
			r.Journal, r.Year, r.Affiliation, now,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", r.PMID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// List returns all stored records ordered by PMID.
func (s *Store) List(ctx context.Context) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pmid, title, abstract, authors, journal, year, affiliation FROM records ORDER BY pmid`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var r types.Record
		var authorsJSON string
		if err := rows.Scan(&r.PMID, &r.Title, &r.Abstract, &authorsJSON, &r.Journal, &r.Year, &r.Affiliation); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(authorsJSON), &r.Authors); err != nil {
			return nil, fmt.Errorf("parsing authors for %s: %w", r.PMID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

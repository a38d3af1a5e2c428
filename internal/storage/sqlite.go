package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matsen/learner/internal/record"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRecordFields is the column list read by scanRecord.
const selectRecordFields = `r.id, r.resource_json, r.retrieval_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			source_identifier TEXT NOT NULL,
			title TEXT NOT NULL,
			abstract_text TEXT,
			publication_date TEXT,
			doi TEXT,
			resource_json TEXT NOT NULL,
			retrieval_json TEXT NOT NULL,
			added_at INTEGER NOT NULL,
			UNIQUE (source, source_identifier)
		);

		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL AND doi != '';
		CREATE INDEX IF NOT EXISTS idx_records_pubdate ON records(publication_date);

		-- One row per author, in record order
		CREATE TABLE IF NOT EXISTS authors (
			record_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (record_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_authors_name ON authors(name COLLATE NOCASE);

		-- Full-text search over titles and abstracts
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			id UNINDEXED,
			title,
			abstract_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Add stores a new record and assigns its ID. A record whose source and
// source_identifier are already stored is rejected with ErrDuplicate.
func (d *DB) Add(ctx context.Context, rec *record.Record) (string, error) {
	source, ident := rec.Source(), rec.SourceIdentifier()
	if source == "" || ident == "" {
		return "", ErrInvalidRecord
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM records WHERE source = ? AND source_identifier = ?`, source, ident,
	).Scan(&existing)
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: %s %s (id %s)", ErrDuplicate, source, ident, existing)
	case err != sql.ErrNoRows:
		return "", fmt.Errorf("checking for duplicate: %w", err)
	}

	id := uuid.NewString()
	stored := *rec
	stored.ID = id
	if err := insertRecord(ctx, tx, &stored, time.Now()); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing record: %w", err)
	}

	rec.ID = id
	return id, nil
}

// insertRecord writes a record and its author and search rows.
func insertRecord(ctx context.Context, tx *sql.Tx, rec *record.Record, addedAt time.Time) error {
	resourceJSON, err := json.Marshal(rec.Resource)
	if err != nil {
		return fmt.Errorf("encoding resource for %s: %w", rec.ID, err)
	}
	retrievalJSON, err := json.Marshal(rec.Retrieval)
	if err != nil {
		return fmt.Errorf("encoding retrieval for %s: %w", rec.ID, err)
	}

	var pubDate sql.NullString
	if t := rec.PublicationDate(); !t.IsZero() {
		pubDate = sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (
			id, source, source_identifier, title, abstract_text,
			publication_date, doi, resource_json, retrieval_json, added_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source(), rec.SourceIdentifier(), rec.Title(),
		nullableStringValue(rec.Abstract()), pubDate, nullableStringValue(rec.DOI()),
		string(resourceJSON), string(retrievalJSON), addedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s %s", ErrDuplicate, rec.Source(), rec.SourceIdentifier())
		}
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}

	for i, name := range rec.AuthorNames() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authors (record_id, position, name) VALUES (?, ?, ?)`, rec.ID, i, name,
		); err != nil {
			return fmt.Errorf("inserting author for %s: %w", rec.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records_fts (id, title, abstract_text) VALUES (?, ?, ?)`,
		rec.ID, rec.Title(), rec.Abstract(),
	); err != nil {
		return fmt.Errorf("inserting fts for %s: %w", rec.ID, err)
	}
	return nil
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// Records without an ID are assigned one.
func (d *DB) RebuildFromJSONL(ctx context.Context, jsonlPath string) (int, error) {
	recs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"records", "authors", "records_fts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	// Preserve file order in added_at so default ordering survives a rebuild.
	base := time.Now()
	for i := range recs {
		rec := &recs[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.Source() == "" || rec.SourceIdentifier() == "" {
			return 0, fmt.Errorf("line %d: %w", i+1, ErrInvalidRecord)
		}
		if err := insertRecord(ctx, tx, rec, base.Add(time.Duration(i))); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(recs), nil
}

// Get returns the record stored for a source and identifier.
func (d *DB) Get(ctx context.Context, source, identifier string) (*record.Record, error) {
	recs, err := d.Query(ctx, Criteria{Source: source, Identifier: identifier, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, source, identifier)
	}
	return &recs[0], nil
}

// GetByID returns the record with the given ID.
func (d *DB) GetByID(ctx context.Context, id string) (*record.Record, error) {
	recs, err := d.Query(ctx, Criteria{ID: id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return &recs[0], nil
}

// Count returns the total number of records.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*record.Record, error) {
	var rec record.Record
	var resourceJSON, retrievalJSON string

	if err := s.Scan(&rec.ID, &resourceJSON, &retrievalJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resourceJSON), &rec.Resource); err != nil {
		return nil, fmt.Errorf("parsing resource JSON for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(retrievalJSON), &rec.Retrieval); err != nil {
		return nil, fmt.Errorf("parsing retrieval JSON for %s: %w", rec.ID, err)
	}
	if rec.Retrieval == nil {
		rec.Retrieval = make(map[string]any)
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	var recs []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

package storage

import (
	"context"
	"fmt"

	"github.com/matsen/learner/internal/record"
)

// Library keeps the JSONL file and the SQLite index in step. Writes go to
// the index first so duplicates are rejected before the file is touched.
type Library struct {
	DB          *DB
	RecordsPath string
}

// OpenLibrary opens the index at dbPath for the records file at recordsPath.
func OpenLibrary(dbPath, recordsPath string) (*Library, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &Library{DB: db, RecordsPath: recordsPath}, nil
}

// Close closes the index.
func (l *Library) Close() error {
	return l.DB.Close()
}

// Add stores rec in the index and appends it to the records file.
func (l *Library) Add(ctx context.Context, rec *record.Record) (string, error) {
	id, err := l.DB.Add(ctx, rec)
	if err != nil {
		return "", err
	}
	if err := Append(l.RecordsPath, *rec); err != nil {
		return id, fmt.Errorf("record %s indexed but not saved (run rebuild): %w", id, err)
	}
	return id, nil
}

// Query returns the records matching c.
func (l *Library) Query(ctx context.Context, c Criteria) ([]record.Record, error) {
	return l.DB.Query(ctx, c)
}

// Remove deletes the records matching c from the index and rewrites the
// records file without them.
func (l *Library) Remove(ctx context.Context, c Criteria) ([]record.Record, error) {
	removed, err := l.DB.Remove(ctx, c)
	if err != nil || len(removed) == 0 {
		return removed, err
	}

	gone := make(map[[2]string]bool, len(removed))
	for i := range removed {
		gone[[2]string{removed[i].Source(), removed[i].SourceIdentifier()}] = true
	}

	all, err := ReadAll(l.RecordsPath)
	if err != nil {
		return removed, err
	}
	kept := all[:0]
	for i := range all {
		if !gone[[2]string{all[i].Source(), all[i].SourceIdentifier()}] {
			kept = append(kept, all[i])
		}
	}
	if err := WriteAll(l.RecordsPath, kept); err != nil {
		return removed, fmt.Errorf("rewriting records file: %w", err)
	}
	return removed, nil
}

// Rebuild recreates the index from the records file.
func (l *Library) Rebuild(ctx context.Context) (int, error) {
	return l.DB.RebuildFromJSONL(ctx, l.RecordsPath)
}

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matsen/learner/internal/author"
	"github.com/matsen/learner/internal/record"
)

// Order names the sort key of a query.
type Order string

// Supported orderings. The zero value keeps insertion order.
const (
	OrderAdded           Order = ""
	OrderTitle           Order = "title"
	OrderPublicationDate Order = "publication_date"
	OrderSource          Order = "source"
)

// ParseOrder validates an order name.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case OrderAdded, OrderTitle, OrderPublicationDate, OrderSource:
		return o, nil
	default:
		return "", fmt.Errorf("unknown order %q (want title, publication_date or source)", s)
	}
}

// Criteria selects records. Set filters combine with AND.
type Criteria struct {
	Text       string    // full-text match over title and abstract
	Author     string    // "Last", "First Last" or "Last, First"; see author.Query
	Source     string    // exact source tag
	Identifier string    // exact source_identifier
	ID         string    // exact record ID
	Before     time.Time // published strictly before; undated records are excluded
	All        bool      // match every record when no filter is set

	OrderBy    Order
	Descending bool
	Limit      int // 0 means no limit
}

// IsEmpty reports whether no filter is set.
func (c Criteria) IsEmpty() bool {
	return c.Text == "" && c.Author == "" && c.Source == "" &&
		c.Identifier == "" && c.ID == "" && c.Before.IsZero()
}

// where builds the filter clause and its arguments.
func (c Criteria) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if q := prepareFTSQuery(c.Text); q != "" {
		clauses = append(clauses, "r.id IN (SELECT id FROM records_fts WHERE records_fts MATCH ?)")
		args = append(args, "{title abstract_text} : ("+q+")")
	}
	// Coarse prefilter on the last name; Query applies the exact match.
	if q := author.ParseQuery(c.Author); !q.IsEmpty() {
		clauses = append(clauses, "r.id IN (SELECT record_id FROM authors WHERE name LIKE ? ESCAPE '\\')")
		args = append(args, "%"+escapeLike(q.Last)+"%")
	}
	if c.Source != "" {
		clauses = append(clauses, "r.source = ?")
		args = append(args, c.Source)
	}
	if c.Identifier != "" {
		clauses = append(clauses, "r.source_identifier = ?")
		args = append(args, c.Identifier)
	}
	if c.ID != "" {
		clauses = append(clauses, "r.id = ?")
		args = append(args, c.ID)
	}
	if !c.Before.IsZero() {
		clauses = append(clauses, "r.publication_date IS NOT NULL AND r.publication_date < ?")
		args = append(args, c.Before.UTC().Format(time.RFC3339))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (c Criteria) orderBy() string {
	var keys string
	switch c.OrderBy {
	case OrderTitle:
		keys = "r.title COLLATE NOCASE"
	case OrderPublicationDate:
		keys = "r.publication_date"
	case OrderSource:
		keys = "r.source, r.source_identifier"
	default:
		keys = "r.added_at"
	}
	dir := " ASC"
	if c.Descending {
		dir = " DESC"
	}
	parts := strings.Split(keys, ", ")
	for i := range parts {
		parts[i] += dir
	}
	return " ORDER BY " + strings.Join(parts, ", ") + ", r.id"
}

// Query returns the records matching c. Empty criteria match everything.
func (d *DB) Query(ctx context.Context, c Criteria) ([]record.Record, error) {
	authorQuery := author.ParseQuery(c.Author)

	where, args := c.where()
	query := `SELECT ` + selectRecordFields + ` FROM records r` + where + c.orderBy()
	if c.Limit > 0 && authorQuery.IsEmpty() {
		query += " LIMIT ?"
		args = append(args, c.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil || authorQuery.IsEmpty() {
		return recs, err
	}

	matched := recs[:0]
	for i := range recs {
		if authorQuery.MatchesAny(recs[i].AuthorNames()) {
			matched = append(matched, recs[i])
			if c.Limit > 0 && len(matched) == c.Limit {
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return matched, nil
}

// Remove deletes the records matching c and returns them. Criteria with no
// filter are rejected unless All is set.
func (d *DB) Remove(ctx context.Context, c Criteria) ([]record.Record, error) {
	if c.IsEmpty() && !c.All {
		return nil, ErrEmptyCriteria
	}

	recs, err := d.Query(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		for _, stmt := range []string{
			"DELETE FROM records WHERE id = ?",
			"DELETE FROM authors WHERE record_id = ?",
			"DELETE FROM records_fts WHERE id = ?",
		} {
			if _, err := tx.ExecContext(ctx, stmt, rec.ID); err != nil {
				return nil, fmt.Errorf("removing %s: %w", rec.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing removal: %w", err)
	}
	return recs, nil
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it as a phrase
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,/") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

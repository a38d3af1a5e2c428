package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/learner/internal/record"
)

func testRecord(source, ident, title, abstract, date string, authors ...string) *record.Record {
	names := make([]any, len(authors))
	for i, a := range authors {
		names[i] = map[string]any{"name": a}
	}
	resource := map[string]any{
		"title":         title,
		"abstract_text": abstract,
		"authors":       names,
	}
	if date != "" {
		resource["publication_date"] = date
	}
	return record.New(source, ident, resource, map[string]any{"pdf_url": "https://example.org/" + ident + ".pdf"})
}

// setupTestDB creates a database holding three records.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	recs := []*record.Record{
		testRecord("arxiv", "2301.07041", "Verifiable Fully Homomorphic Encryption",
			"Fully homomorphic encryption is seeing real-world deployment.",
			"2023-01-17T18:58:36Z", "Alexander Viand", "Christian Knabenhans", "Anwar Hithnawi"),
		testRecord("doi", "10.1038/nature14539", "Deep learning",
			"Deep learning allows computational models to learn representations.",
			"2015-05-27T00:00:00Z", "Yann LeCun", "Yoshua Bengio", "Geoffrey Hinton"),
		testRecord("iacr", "2016/421", "Homomorphic Encryption for Arithmetic of Approximate Numbers",
			"We suggest a method to construct a homomorphic encryption scheme.",
			"2016-05-01T00:00:00Z", "Jung Hee Cheon", "Andrey Kim", "Miran Kim", "Yongsoo Song"),
	}
	for _, rec := range recs {
		if _, err := db.Add(context.Background(), rec); err != nil {
			t.Fatalf("Add(%s) error = %v", rec.SourceIdentifier(), err)
		}
	}
	return db
}

func titles(recs []record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title()
	}
	return out
}

func TestAdd_AssignsID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rec := testRecord("arxiv", "1706.03762", "Attention Is All You Need", "Transformers.", "2017-06-12T17:57:34Z", "Ashish Vaswani")
	id, err := db.Add(ctx, rec)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if id == "" || rec.ID != id {
		t.Errorf("Add() id = %q, rec.ID = %q", id, rec.ID)
	}

	got, err := db.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title() != "Attention Is All You Need" {
		t.Errorf("GetByID().Title() = %q", got.Title())
	}
	if got.PDFURL() != "https://example.org/1706.03762.pdf" {
		t.Errorf("GetByID().PDFURL() = %q", got.PDFURL())
	}
}

func TestAdd_Duplicate(t *testing.T) {
	db := setupTestDB(t)

	dup := testRecord("doi", "10.1038/nature14539", "Deep learning (again)", "", "")
	_, err := db.Add(context.Background(), dup)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Add() error = %v, want ErrDuplicate", err)
	}
	if dup.ID != "" {
		t.Errorf("rejected record was assigned ID %q", dup.ID)
	}

	count, _ := db.Count(context.Background())
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestAdd_InvalidRecord(t *testing.T) {
	db := setupTestDB(t)
	rec := &record.Record{Resource: map[string]any{"title": "orphan"}}
	if _, err := db.Add(context.Background(), rec); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Add() error = %v, want ErrInvalidRecord", err)
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rec, err := db.Get(ctx, "iacr", "2016/421")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	names := rec.AuthorNames()
	if len(names) != 4 || names[0] != "Jung Hee Cheon" {
		t.Errorf("Get().AuthorNames() = %v", names)
	}

	if _, err := db.Get(ctx, "iacr", "1999/001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}
}

func TestQuery(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "all in insertion order",
			criteria: Criteria{All: true},
			want: []string{
				"Verifiable Fully Homomorphic Encryption",
				"Deep learning",
				"Homomorphic Encryption for Arithmetic of Approximate Numbers",
			},
		},
		{
			name:     "text matches title and abstract",
			criteria: Criteria{Text: "homomorphic", OrderBy: OrderTitle},
			want: []string{
				"Homomorphic Encryption for Arithmetic of Approximate Numbers",
				"Verifiable Fully Homomorphic Encryption",
			},
		},
		{
			name:     "text with punctuation",
			criteria: Criteria{Text: "real-world"},
			want:     []string{"Verifiable Fully Homomorphic Encryption"},
		},
		{
			name:     "author last name is case-insensitive",
			criteria: Criteria{Author: "bengio"},
			want:     []string{"Deep learning"},
		},
		{
			name:     "author shared across records",
			criteria: Criteria{Author: "Kim", OrderBy: OrderSource},
			want:     []string{"Homomorphic Encryption for Arithmetic of Approximate Numbers"},
		},
		{
			name:     "author first name prefix",
			criteria: Criteria{Author: "Geoff Hinton"},
			want:     []string{"Deep learning"},
		},
		{
			name:     "author last name must match whole",
			criteria: Criteria{Author: "Vian"},
			want:     []string{},
		},
		{
			name:     "author wrong first name",
			criteria: Criteria{Author: "Yann Bengio"},
			want:     []string{},
		},
		{
			name:     "source",
			criteria: Criteria{Source: "arxiv"},
			want:     []string{"Verifiable Fully Homomorphic Encryption"},
		},
		{
			name:     "published before",
			criteria: Criteria{Before: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), OrderBy: OrderPublicationDate},
			want: []string{
				"Deep learning",
				"Homomorphic Encryption for Arithmetic of Approximate Numbers",
			},
		},
		{
			name:     "publication date descending with limit",
			criteria: Criteria{OrderBy: OrderPublicationDate, Descending: true, Limit: 2},
			want: []string{
				"Verifiable Fully Homomorphic Encryption",
				"Homomorphic Encryption for Arithmetic of Approximate Numbers",
			},
		},
		{
			name:     "order by source",
			criteria: Criteria{OrderBy: OrderSource},
			want: []string{
				"Verifiable Fully Homomorphic Encryption",
				"Deep learning",
				"Homomorphic Encryption for Arithmetic of Approximate Numbers",
			},
		},
		{
			name:     "combined filters",
			criteria: Criteria{Text: "encryption", Author: "viand"},
			want:     []string{"Verifiable Fully Homomorphic Encryption"},
		},
		{
			name:     "no match",
			criteria: Criteria{Text: "protein folding"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := db.Query(context.Background(), tt.criteria)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			got := titles(recs)
			if len(got) != len(tt.want) {
				t.Fatalf("Query() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Query()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRemove(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.Remove(ctx, Criteria{}); !errors.Is(err, ErrEmptyCriteria) {
		t.Fatalf("Remove(empty) error = %v, want ErrEmptyCriteria", err)
	}

	removed, err := db.Remove(ctx, Criteria{Source: "doi"})
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(removed) != 1 || removed[0].Title() != "Deep learning" {
		t.Errorf("Remove() = %v", titles(removed))
	}

	if recs, _ := db.Query(ctx, Criteria{Author: "LeCun"}); len(recs) != 0 {
		t.Errorf("author rows survived removal: %v", titles(recs))
	}
	if recs, _ := db.Query(ctx, Criteria{Text: "representations"}); len(recs) != 0 {
		t.Errorf("search rows survived removal: %v", titles(recs))
	}

	// The identifier can be added again once removed.
	if _, err := db.Add(ctx, testRecord("doi", "10.1038/nature14539", "Deep learning", "", "")); err != nil {
		t.Errorf("re-Add() error = %v", err)
	}

	removed, err = db.Remove(ctx, Criteria{All: true})
	if err != nil {
		t.Fatalf("Remove(All) error = %v", err)
	}
	if len(removed) != 3 {
		t.Errorf("Remove(All) removed %d, want 3", len(removed))
	}
}

func TestParseOrder(t *testing.T) {
	for _, s := range []string{"", "title", "publication_date", "source"} {
		if _, err := ParseOrder(s); err != nil {
			t.Errorf("ParseOrder(%q) error = %v", s, err)
		}
	}
	if _, err := ParseOrder("year"); err == nil {
		t.Error("ParseOrder(year) should fail")
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  deep learning ", "deep learning"},
		{"real-world", `"real-world"`},
		{`say "hi"`, `"say ""hi"""`},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.in); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

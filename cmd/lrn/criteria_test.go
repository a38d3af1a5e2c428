package main

import (
	"testing"
	"time"

	"github.com/matsen/learner/internal/storage"
)

func TestCriteriaFlags(t *testing.T) {
	f := criteriaFlags{
		author:     "Hinton",
		source:     "doi",
		before:     "2020-01-01",
		order:      "publication_date",
		descending: true,
		limit:      5,
	}
	c, err := f.criteria("deep learning")
	if err != nil {
		t.Fatalf("criteria() error = %v", err)
	}
	want := storage.Criteria{
		Text:       "deep learning",
		Author:     "Hinton",
		Source:     "doi",
		Before:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		OrderBy:    storage.OrderPublicationDate,
		Descending: true,
		Limit:      5,
	}
	if c != want {
		t.Errorf("criteria() = %+v, want %+v", c, want)
	}
}

func TestCriteriaFlags_Errors(t *testing.T) {
	if _, err := (&criteriaFlags{order: "relevance"}).criteria(""); err == nil {
		t.Error("criteria() should reject an unknown order")
	}
	if _, err := (&criteriaFlags{before: "01/02/2020"}).criteria(""); err == nil {
		t.Error("criteria() should reject a malformed date")
	}
}

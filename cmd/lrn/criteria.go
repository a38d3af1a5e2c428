package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/storage"
)

// criteriaFlags are the record filters shared by search, remove and export.
type criteriaFlags struct {
	author     string
	source     string
	identifier string
	before     string
	order      string
	descending bool
	limit      int
}

func (f *criteriaFlags) bind(cmd *cobra.Command, defaultLimit int) {
	cmd.Flags().StringVar(&f.author, "author", "", "Match author names containing this text")
	cmd.Flags().StringVar(&f.source, "source", "", "Restrict to one source (e.g. arxiv)")
	cmd.Flags().StringVar(&f.identifier, "identifier", "", "Restrict to one source identifier")
	cmd.Flags().StringVar(&f.before, "before", "", "Only papers published before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.order, "order", "", "Sort by title, publication_date or source")
	cmd.Flags().BoolVar(&f.descending, "desc", false, "Reverse the sort order")
	cmd.Flags().IntVar(&f.limit, "limit", defaultLimit, "Maximum records (0 for no limit)")
}

// criteria builds storage criteria from the flags and an optional
// full-text query.
func (f *criteriaFlags) criteria(text string) (storage.Criteria, error) {
	order, err := storage.ParseOrder(f.order)
	if err != nil {
		return storage.Criteria{}, err
	}

	c := storage.Criteria{
		Text:       text,
		Author:     f.author,
		Source:     f.source,
		Identifier: f.identifier,
		OrderBy:    order,
		Descending: f.descending,
		Limit:      f.limit,
	}
	if f.before != "" {
		before, err := time.Parse("2006-01-02", f.before)
		if err != nil {
			return storage.Criteria{}, fmt.Errorf("invalid --before date %q (want YYYY-MM-DD)", f.before)
		}
		c.Before = before
	}
	return c, nil
}

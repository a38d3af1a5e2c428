package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/record"
)

var searchFlags criteriaFlags

func init() {
	searchFlags.bind(searchCmd, DefaultSearchLimit)
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search records in the library",
	Long: `Search records by full text over titles and abstracts, by author, by
source or by publication date. With no query and no filters every record
is listed.

Examples:
  lrn search "homomorphic encryption"
  lrn search --author Hinton
  lrn search --source arxiv --before 2020-01-01 --order publication_date --desc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	}
	c, err := searchFlags.criteria(text)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	lib := mustOpenLibrary(mustLocate())
	defer lib.Close()

	recs, err := lib.Query(context.Background(), c)
	if err != nil {
		exitWithErr("searching", err)
	}

	// Empty result is not an error
	if recs == nil {
		recs = []record.Record{}
	}

	if humanOutput {
		if len(recs) == 0 {
			fmt.Println("No records found")
			return nil
		}
		fmt.Printf("Found %d records:\n\n", len(recs))
		for i := range recs {
			printRecordSummary(i+1, &recs[i])
		}
	} else {
		outputJSON(recs)
	}
	return nil
}

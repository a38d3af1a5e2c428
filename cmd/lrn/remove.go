package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/record"
)

var (
	removeFlags criteriaFlags
	removeAll   bool
)

func init() {
	removeFlags.bind(removeCmd, 0)
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "Remove every record")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove [<source> <identifier>]",
	Short: "Remove records from the library",
	Long: `Remove records from the library and its JSONL file.

A bare invocation with no filter is refused; pass --all to empty the library.

Examples:
  lrn remove arxiv 2301.07041
  lrn remove --author Hinton
  lrn remove --all`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected <source> <identifier> or filter flags, got %d args", len(args))
		}
		return nil
	},
	RunE: runRemove,
}

// RemoveResponse is the response for the remove command.
type RemoveResponse struct {
	Status  string          `json:"status"`
	Removed int             `json:"removed"`
	Records []record.Record `json:"records"`
}

func runRemove(cmd *cobra.Command, args []string) error {
	c, err := removeFlags.criteria("")
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(args) == 2 {
		c.Source, c.Identifier = args[0], args[1]
	}
	c.All = removeAll

	lib := mustOpenLibrary(mustLocate())
	defer lib.Close()

	removed, err := lib.Remove(context.Background(), c)
	if err != nil {
		exitWithErr("removing", err)
	}
	if removed == nil {
		removed = []record.Record{}
	}

	if humanOutput {
		fmt.Printf("Removed %d records\n", len(removed))
		for i := range removed {
			fmt.Printf("  %s %s  %s\n", removed[i].Source(), removed[i].SourceIdentifier(),
				truncateString(removed[i].Title(), SearchTitleMaxLen))
		}
	} else {
		outputJSON(RemoveResponse{Status: "removed", Removed: len(removed), Records: removed})
	}
	return nil
}

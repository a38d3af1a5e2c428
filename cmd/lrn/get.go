package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/record"
)

var getByID bool

func init() {
	getCmd.Flags().BoolVar(&getByID, "id", false, "Look up by library ID instead of source and identifier")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <source> <identifier> | --id <id>",
	Short: "Get a single record from the library",
	Long: `Get a single record by its source and source identifier, or by library ID.

Examples:
  lrn get arxiv 2301.07041
  lrn get doi 10.1038/nature14539
  lrn get --id 2f1c6a3e-8d5b-4f0e-9a51-0c7f4b1d2e33`,
	Args: func(cmd *cobra.Command, args []string) error {
		if getByID {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	lib := mustOpenLibrary(mustLocate())
	defer lib.Close()

	var rec *record.Record
	var err error
	if getByID {
		rec, err = lib.DB.GetByID(ctx, args[0])
	} else {
		rec, err = lib.DB.Get(ctx, args[0], args[1])
	}
	if err != nil {
		exitWithErr("getting record", err)
	}

	if humanOutput {
		printRecordDetail(rec)
	} else {
		outputJSON(rec)
	}
	return nil
}

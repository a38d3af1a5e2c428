package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query index from the records file",
	Long: `Rebuild the SQLite index from the JSONL records file.

Use this after pulling changes from git or if the index becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	lib := mustOpenLibrary(mustLocate())
	defer lib.Close()

	count, err := lib.Rebuild(context.Background())
	if err != nil {
		exitWithErr("rebuilding database", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt index with %d records\n", count)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Records: count})
	}
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/pdf"
	"github.com/matsen/learner/internal/record"
)

var (
	addDownload bool
	addDryRun   bool
)

func init() {
	addCmd.Flags().BoolVar(&addDownload, "download", false, "Also download the paper's PDF")
	addCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "Retrieve and print the record without saving it")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <identifier-or-url>",
	Short: "Retrieve a paper and add it to the library",
	Long: `Resolve an identifier to its source, fetch the source's metadata and add
the resulting record to the library.

Examples:
  lrn add 2301.07041
  lrn add https://arxiv.org/abs/2301.07041
  lrn add 10.1038/nature14539 --download
  lrn add 2016/421 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

// AddResponse is the response for the add command.
type AddResponse struct {
	Status string         `json:"status"`
	ID     string         `json:"id,omitempty"`
	Record *record.Record `json:"record"`
	PDF    *pdf.Result    `json:"pdf,omitempty"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := mustLocate()
	set := mustLoadRetrievers(cfg)
	client := newClient(cfg)

	rec, err := set.Retrieve(ctx, client, args[0])
	if err != nil {
		exitWithErr("retrieving "+args[0], err)
	}

	resp := AddResponse{Status: "retrieved", Record: rec}
	if !addDryRun {
		lib := mustOpenLibrary(cfg)
		defer lib.Close()

		id, err := lib.Add(ctx, rec)
		if err != nil {
			exitWithErr("adding record", err)
		}
		resp.Status = "added"
		resp.ID = id
	}

	if addDownload {
		res, err := pdf.Download(ctx, client, rec, cfg.PDFDir, false)
		if err != nil {
			exitWithErr("downloading pdf", err)
		}
		resp.PDF = res
	}

	if humanOutput {
		outputHuman("%s %s %s\n", resp.Status, rec.Source(), rec.SourceIdentifier())
		fmt.Println()
		printRecordDetail(rec)
		if resp.PDF != nil {
			fmt.Printf("\nSaved PDF to %s (%s)\n", resp.PDF.Path, formatBytes(resp.PDF.Bytes))
		}
	} else {
		outputJSON(resp)
	}
	return nil
}

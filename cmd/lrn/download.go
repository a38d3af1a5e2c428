package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/pdf"
)

var downloadOverwrite bool

func init() {
	downloadCmd.Flags().BoolVar(&downloadOverwrite, "overwrite", false, "Replace an already downloaded PDF")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download <source> <identifier>",
	Short: "Download the PDF of a record in the library",
	Long: `Download a stored record's pdf_url into the library's PDF directory as
<source>_<identifier>.pdf.

Examples:
  lrn download arxiv 2301.07041
  lrn download iacr 2016/421 --overwrite`,
	Args: cobra.ExactArgs(2),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := mustLocate()
	lib := mustOpenLibrary(cfg)
	defer lib.Close()

	rec, err := lib.DB.Get(ctx, args[0], args[1])
	if err != nil {
		exitWithErr("getting record", err)
	}

	res, err := pdf.Download(ctx, newClient(cfg), rec, cfg.PDFDir, downloadOverwrite)
	if err != nil {
		exitWithErr("downloading pdf", err)
	}

	if humanOutput {
		if res.Skipped {
			fmt.Printf("Already downloaded: %s\n", res.Path)
		} else {
			fmt.Printf("Saved %s (%s)\n", res.Path, formatBytes(res.Bytes))
		}
	} else {
		outputJSON(res)
	}
	return nil
}

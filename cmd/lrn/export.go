package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/export"
)

var (
	exportFormat string
	exportOutput string
	exportFlags  criteriaFlags
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "jsonl", "Output format: jsonl or bibtex")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	exportFlags.bind(exportCmd, 0)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export records as JSONL or BibTeX",
	Long: `Export records, optionally filtered like search. Output is always the
requested format, never the JSON envelope.

Examples:
  lrn export > records.jsonl
  lrn export --format bibtex -o refs.bib
  lrn export --format bibtex --source arxiv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "jsonl" && exportFormat != "bibtex" {
		exitWithError(ExitError, "unknown format %q (want jsonl or bibtex)", exportFormat)
	}

	var text string
	if len(args) == 1 {
		text = args[0]
	}
	c, err := exportFlags.criteria(text)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	lib := mustOpenLibrary(mustLocate())
	defer lib.Close()

	recs, err := lib.Query(context.Background(), c)
	if err != nil {
		exitWithErr("listing records", err)
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	switch exportFormat {
	case "bibtex":
		_, err = fmt.Fprint(w, export.ToBibTeXList(recs))
	default:
		err = export.WriteJSONL(w, recs)
	}
	if err != nil {
		exitWithError(ExitError, "writing export: %v", err)
	}
	return nil
}

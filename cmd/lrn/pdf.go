package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/pdf"
)

var (
	pdfPages    int
	pdfShowText bool
)

func init() {
	pdfAnalyzeCmd.Flags().IntVar(&pdfPages, "pages", pdf.DefaultMaxPages, "Number of leading pages to read (0 for all)")
	pdfAnalyzeCmd.Flags().BoolVar(&pdfShowText, "text", false, "Include the extracted text")
	pdfCmd.AddCommand(pdfAnalyzeCmd)
	rootCmd.AddCommand(pdfCmd)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Work with downloaded PDFs",
}

var pdfAnalyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf>",
	Short: "Extract a title guess, DOI and arXiv id from a PDF",
	Long: `Read the first pages of a PDF and report what could identify the paper.
A found DOI or arXiv id can be passed straight to lrn add.

Examples:
  lrn pdf analyze paper.pdf
  lrn pdf analyze paper.pdf --pages 1 --text`,
	Args: cobra.ExactArgs(1),
	RunE: runPDFAnalyze,
}

// AnalyzeResponse adds the optional text to an analysis.
type AnalyzeResponse struct {
	*pdf.Analysis
	Text string `json:"text,omitempty"`
}

func runPDFAnalyze(cmd *cobra.Command, args []string) error {
	a, err := pdf.Analyze(args[0], pdfPages)
	if err != nil {
		exitWithError(ExitDataError, "analyzing pdf: %v", err)
	}

	resp := AnalyzeResponse{Analysis: a}
	if pdfShowText {
		resp.Text = a.Text
	}

	if humanOutput {
		fmt.Printf("%s: %d pages, %d words\n", a.Path, a.Pages, a.Words)
		if a.Title != "" {
			fmt.Printf("  Title: %s\n", a.Title)
		}
		if a.DOI != "" {
			fmt.Printf("  DOI:   %s\n", a.DOI)
		}
		if a.ArXivID != "" {
			fmt.Printf("  arXiv: %s\n", a.ArXivID)
		}
		if pdfShowText {
			fmt.Println()
			fmt.Println(a.Text)
		}
	} else {
		outputJSON(resp)
	}
	return nil
}

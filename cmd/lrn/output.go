package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/learner/internal/config"
	"github.com/matsen/learner/internal/fetch"
	"github.com/matsen/learner/internal/record"
	"github.com/matsen/learner/internal/retriever"
	"github.com/matsen/learner/internal/storage"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search command

	SearchTitleMaxLen = 70 // Used in search result summaries
	TextWrapWidth     = 60 // Standard text wrap width
	DetailWrapWidth   = 68 // Wider wrap for abstracts
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithErr exits with the code matching err's kind.
func exitWithErr(context string, err error) {
	exitWithError(exitCodeFor(err), "%s: %v", context, err)
}

// exitCodeFor maps error kinds to exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, storage.ErrDuplicate):
		return ExitDuplicate
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, retriever.ErrUnknownRetriever),
		fetch.IsNotFound(err):
		return ExitNotFound
	case retriever.IsIdentifierError(err),
		retriever.IsDataError(err),
		errors.Is(err, storage.ErrInvalidRecord):
		return ExitDataError
	case errors.Is(err, config.ErrNoLibrary):
		return ExitConfigError
	default:
		return ExitError
	}
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printRecordSummary prints a numbered one-record summary.
func printRecordSummary(num int, rec *record.Record) {
	fmt.Printf("[%d] %s %s\n", num, rec.Source(), rec.SourceIdentifier())
	fmt.Printf("    %s\n", truncateString(rec.Title(), SearchTitleMaxLen))
	if names := rec.AuthorNames(); len(names) > 0 {
		fmt.Printf("    %s\n", formatAuthorsShort(names, 3))
	}
	if date := rec.PublicationDate(); !date.IsZero() {
		fmt.Printf("    (%d)\n", date.Year())
	}
	fmt.Println()
}

// printRecordDetail prints every well-known field of a record.
func printRecordDetail(rec *record.Record) {
	heading := rec.Source() + " " + rec.SourceIdentifier()
	fmt.Println(heading)
	fmt.Println(strings.Repeat("═", 70))
	fmt.Println()

	fmt.Printf("Title:    %s\n", wrapText(rec.Title(), TextWrapWidth, "          "))
	if names := rec.AuthorNames(); len(names) > 0 {
		fmt.Printf("Authors:  %s\n", wrapText(strings.Join(names, ", "), TextWrapWidth, "          "))
	}
	if date := rec.PublicationDate(); !date.IsZero() {
		fmt.Printf("Date:     %s\n", date.Format("2006-01-02"))
	}
	if doi := rec.DOI(); doi != "" {
		fmt.Printf("DOI:      %s\n", doi)
	}
	if url := rec.PDFURL(); url != "" {
		fmt.Printf("PDF:      %s\n", url)
	}
	if rec.ID != "" {
		fmt.Printf("ID:       %s\n", rec.ID)
	}
	if abstract := rec.Abstract(); abstract != "" {
		fmt.Println()
		fmt.Println("Abstract:")
		fmt.Printf("  %s\n", wrapText(abstract, DetailWrapWidth, "  "))
	}
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	var currentLine strings.Builder

	for _, word := range strings.Fields(text) {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// formatAuthorsShort lists up to maxCount names, then "et al.".
func formatAuthorsShort(names []string, maxCount int) string {
	if len(names) > maxCount {
		return strings.Join(names[:maxCount], ", ") + ", et al."
	}
	return strings.Join(names, ", ")
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

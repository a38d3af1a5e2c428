// Package pdf downloads paper PDFs and extracts text and identifiers
// from them.
package pdf

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4-9 digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// arXiv identifiers as printed in the margin of preprints.
var arxivPattern = regexp.MustCompile(`arXiv:(\d{4}\.\d{4,5}(?:v\d+)?)`)

// DefaultMaxPages bounds how many pages Analyze reads.
const DefaultMaxPages = 3

// Analysis summarizes the first pages of a PDF.
type Analysis struct {
	Path    string `json:"path"`
	Pages   int    `json:"pages"`
	Title   string `json:"title,omitempty"`
	DOI     string `json:"doi,omitempty"`
	ArXivID string `json:"arxiv_id,omitempty"`
	Words   int    `json:"words"`
	Text    string `json:"-"`
}

// Analyze reads up to maxPages pages of the PDF at path and extracts a
// title guess, DOI and arXiv identifier. Unreadable pages are skipped.
func Analyze(path string, maxPages int) (*Analysis, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if maxPages <= 0 || maxPages > total {
		maxPages = total
	}

	var pages []string
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}

	text := strings.Join(pages, "\n")
	a := &Analysis{
		Path:  path,
		Pages: total,
		Text:  text,
		Words: len(strings.FieldsFunc(text, unicode.IsSpace)),
		DOI:   findDOI(text),
	}
	if len(pages) > 0 {
		a.Title = findTitle(pages[0])
	}
	if m := arxivPattern.FindStringSubmatch(text); m != nil {
		a.ArXivID = m[1]
	}
	return a, nil
}

// findTitle returns the first substantial line that is not a running
// header. This is a heuristic; PDFs carry no reliable title structure.
func findTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.HasPrefix(lower, "arxiv:"),
		strings.Contains(lower, "volume") && strings.Contains(lower, "issue"),
		strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}

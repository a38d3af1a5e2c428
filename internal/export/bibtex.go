// Package export writes records as BibTeX or JSONL.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/matsen/learner/internal/author"
	"github.com/matsen/learner/internal/record"
)

// Preprint sources exported as @misc with eprint fields.
var eprintArchives = map[string]string{
	"arxiv": "arXiv",
	"iacr":  "Cryptology ePrint Archive",
}

// ToBibTeX converts a record to a BibTeX entry under the given key.
func ToBibTeX(rec record.Record, key string) string {
	var b strings.Builder

	archive, isEprint := eprintArchives[rec.Source()]
	entryType := "article"
	if isEprint {
		entryType = "misc"
	}
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, key)

	if names := rec.AuthorNames(); len(names) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatAuthors(names))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(rec.Title()))

	if journal, ok := rec.Resource["journal"].(string); ok && journal != "" && !isEprint {
		fmt.Fprintf(&b, "  journal = {%s},\n", escapeLatex(journal))
	}
	if date := rec.PublicationDate(); !date.IsZero() {
		fmt.Fprintf(&b, "  year = {%d},\n", date.Year())
		fmt.Fprintf(&b, "  month = {%d},\n", int(date.Month()))
	}
	if isEprint {
		fmt.Fprintf(&b, "  eprint = {%s},\n", rec.SourceIdentifier())
		fmt.Fprintf(&b, "  archivePrefix = {%s},\n", archive)
	}
	if doi := rec.DOI(); doi != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", doi)
	}
	if url := rec.PDFURL(); url != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", url)
	}
	if abstract := rec.Abstract(); abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(abstract))
	}

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList converts records to BibTeX, giving each a unique key.
func ToBibTeXList(recs []record.Record) string {
	seen := make(map[string]int)
	entries := make([]string, 0, len(recs))
	for _, rec := range recs {
		key := CitationKey(rec)
		seen[key]++
		if n := seen[key]; n > 1 {
			key += string(rune('a' + n - 2))
		}
		entries = append(entries, ToBibTeX(rec, key))
	}
	return strings.Join(entries, "\n")
}

// CitationKey builds a key from the first author's last name, the year and
// the first significant title word, e.g. "LeCun2015deep".
func CitationKey(rec record.Record) string {
	var b strings.Builder

	if names := rec.AuthorNames(); len(names) > 0 {
		b.WriteString(keyPart(author.Split(names[0]).Last))
	}
	if date := rec.PublicationDate(); !date.IsZero() {
		fmt.Fprintf(&b, "%d", date.Year())
	}
	for _, word := range strings.Fields(rec.Title()) {
		w := strings.ToLower(keyPart(word))
		if len(w) > 3 || (w != "" && !stopWords[w]) {
			b.WriteString(w)
			break
		}
	}

	if b.Len() == 0 {
		return keyPart(rec.Source() + rec.SourceIdentifier())
	}
	return b.String()
}

var stopWords = map[string]bool{"a": true, "an": true, "the": true, "on": true, "of": true, "for": true}

// keyPart keeps letters and digits only.
func keyPart(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(names []string) string {
	formatted := make([]string, 0, len(names))
	for _, name := range names {
		n := author.Split(name)
		if n.First != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", escapeLatex(n.Last), escapeLatex(n.First)))
		} else {
			formatted = append(formatted, escapeLatex(n.Last))
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}

// WriteJSONL writes one JSON record per line.
func WriteJSONL(w io.Writer, recs []record.Record) error {
	enc := json.NewEncoder(w)
	for i, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	return nil
}

package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Clean returns a copy of v with every string leaf passed through
// CleanString.
func Clean(v any) any {
	switch t := v.(type) {
	case string:
		return CleanString(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clean(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clean(e)
		}
		return out
	default:
		return v
	}
}

// CleanString strips embedded markup and collapses whitespace in strings
// that contain either, then applies Unicode NFC normalization.
func CleanString(s string) string {
	if strings.ContainsAny(s, "<\n") {
		s = tagPattern.ReplaceAllString(s, "")
		s = whitespacePattern.ReplaceAllString(s, " ")
		s = strings.TrimSpace(s)
	}
	return norm.NFC.String(s)
}

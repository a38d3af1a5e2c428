// Package author parses author display names and matches author queries
// against them.
package author

import (
	"strings"
)

// Name is a display name split into first and last parts.
type Name struct {
	First string // may be empty for single-word names
	Last  string
}

// Split parses a display name.
//
// Supported formats:
//   - "Yu"             → last="Yu"
//   - "Timothy C Yu"   → first="Timothy C", last="Yu"
//   - "Yu, Timothy"    → first="Timothy", last="Yu"
//
// Names are trimmed but case is preserved.
func Split(input string) Name {
	input = strings.TrimSpace(input)
	if input == "" {
		return Name{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		return Name{
			First: strings.TrimSpace(input[idx+1:]),
			Last:  strings.TrimSpace(input[:idx]),
		}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Name{Last: parts[0]}
	}
	return Name{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}

// Query is a parsed author search query.
type Query Name

// ParseQuery parses an author search string with the formats accepted by
// Split.
func ParseQuery(input string) Query {
	return Query(Split(input))
}

// IsEmpty reports whether the query has no last name to match.
func (q Query) IsEmpty() bool { return q.Last == "" }

// Matches checks if the query matches an author display name.
//
// Matching rules:
//   - Last name: case-insensitive exact match (required)
//   - First name: case-insensitive prefix match (if query has first name)
//
// "Tim Yu" matches "Timothy C Yu" while "Yu" does not match "Yujia Zhou".
func (q Query) Matches(name string) bool {
	n := Split(name)
	if !strings.EqualFold(q.Last, n.Last) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(n.First), strings.ToLower(q.First))
}

// MatchesAny checks if the query matches any of the names.
func (q Query) MatchesAny(names []string) bool {
	for _, name := range names {
		if q.Matches(name) {
			return true
		}
	}
	return false
}

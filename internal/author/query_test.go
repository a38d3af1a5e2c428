package author

import (
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Name
	}{
		{"single word is last name", "LeCun", Name{Last: "LeCun"}},
		{"two words is First Last", "Yann LeCun", Name{First: "Yann", Last: "LeCun"}},
		{"three words: first two are first name", "Jung Hee Cheon", Name{First: "Jung Hee", Last: "Cheon"}},
		{"comma format: Last, First", "Cheon, Jung Hee", Name{First: "Jung Hee", Last: "Cheon"}},
		{"comma format with spaces", "Hinton,  Geoffrey E", Name{First: "Geoffrey E", Last: "Hinton"}},
		{"leading/trailing whitespace", "  Bengio  ", Name{Last: "Bengio"}},
		{"empty string", "", Name{}},
		{"whitespace only", "   ", Name{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Split(tt.input); got != tt.want {
				t.Errorf("Split(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryMatches(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		author string
		want   bool
	}{
		{"exact last name match", "Kim", "Miran Kim", true},
		{"last name case insensitive", "kim", "Andrey Kim", true},
		{"last name no partial match", "Kim", "Kimberly Smith", false},
		{"first and last match", "Jung Hee Cheon", "Jung Hee Cheon", true},
		{"first name prefix match", "Geoff Hinton", "Geoffrey E Hinton", true},
		{"first name case insensitive", "yann lecun", "Yann LeCun", true},
		{"first name mismatch", "Andrey Kim", "Miran Kim", false},
		{"last name mismatch", "Yann Bengio", "Yann LeCun", false},
		{"comma query", "Hinton, Geoffrey", "Geoffrey Hinton", true},
		{"author stored as Last, First", "Cheon", "Cheon, Jung Hee", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(tt.query)
			if got := q.Matches(tt.author); got != tt.want {
				t.Errorf("ParseQuery(%q).Matches(%q) = %v, want %v", tt.query, tt.author, got, tt.want)
			}
		})
	}
}

func TestQueryMatchesAny(t *testing.T) {
	authors := []string{"Alexander Viand", "Christian Knabenhans", "Anwar Hithnawi"}

	tests := []struct {
		query string
		want  bool
	}{
		{"Viand", true},
		{"Hithnawi", true},
		{"Anwar Hithnawi", true},
		{"Christian Viand", false},
		{"Vian", false},
		{"Smith", false},
	}

	for _, tt := range tests {
		if got := ParseQuery(tt.query).MatchesAny(authors); got != tt.want {
			t.Errorf("ParseQuery(%q).MatchesAny() = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestQueryIsEmpty(t *testing.T) {
	if !ParseQuery("  ").IsEmpty() {
		t.Error("blank query should be empty")
	}
	if ParseQuery("Yu").IsEmpty() {
		t.Error("last-name query should not be empty")
	}
}

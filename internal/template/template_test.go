package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paperTemplate = `
name = "paper"
description = "Academic paper metadata"

[[fields]]
name = "title"
base_type = "string"
required = true
validation = { min_length = 1, max_length = 500 }

[[fields]]
name = "authors"
base_type = "array"
required = true
validation = { min_items = 1 }

[fields.items]
base_type = "object"

[[fields.items.fields]]
name = "name"
base_type = "string"
required = true

[[fields.items.fields]]
name = "affiliation"
base_type = "string"

[[fields]]
name = "publication_date"
base_type = "string"
validation = { datetime = true }

[[fields]]
name = "pages"
base_type = "number"
default = 1
validation = { minimum = 1, maximum = 10000 }
`

func TestParse(t *testing.T) {
	tmpl, err := Parse([]byte(paperTemplate))
	require.NoError(t, err)

	assert.Equal(t, "paper", tmpl.Name)
	require.Len(t, tmpl.Fields, 4)

	authors, ok := tmpl.Field("authors")
	require.True(t, ok)
	require.NotNil(t, authors.Items)
	assert.Equal(t, "authors", authors.Items.Name)
	assert.Len(t, authors.Items.Fields, 2)

	pages, _ := tmpl.Field("pages")
	assert.Equal(t, 1.0, pages.Default)
	assert.Equal(t, 10000.0, *pages.Validation.Maximum)

	_, ok = tmpl.Field("missing")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"no name", "[[fields]]\nname = \"a\"\nbase_type = \"string\"\n"},
		{"bad type", "name = \"t\"\n[[fields]]\nname = \"a\"\nbase_type = \"text\"\n"},
		{"duplicate", "name = \"t\"\n[[fields]]\nname = \"a\"\nbase_type = \"string\"\n[[fields]]\nname = \"a\"\nbase_type = \"string\"\n"},
		{"bad pattern", "name = \"t\"\n[[fields]]\nname = \"a\"\nbase_type = \"string\"\nvalidation = { pattern = \"(\" }\n"},
		{"zero multiple", "name = \"t\"\n[[fields]]\nname = \"a\"\nbase_type = \"number\"\nvalidation = { multiple_of = 0 }\n"},
		{"invalid toml", "name = "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			assert.Error(t, err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paper.toml"), []byte(paperTemplate), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	reg, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"paper"}, reg.Names())

	tmpl, ok := reg.Get("paper.toml")
	require.True(t, ok)
	assert.Equal(t, "paper", tmpl.Name)

	empty, err := LoadDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, empty.Names())
}

func TestLoadDirDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.toml"), []byte(paperTemplate), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.toml"), []byte(paperTemplate), 0644))

	_, err := LoadDir(dir)
	assert.ErrorContains(t, err, "duplicate template name")
}

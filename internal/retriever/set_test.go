package retriever

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPattern(t *testing.T, expr string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile(expr)
	require.NoError(t, err)
	return re
}

func stub(name, source, pattern string) *Retriever {
	return &Retriever{Name: name, Source: source, Pattern: regexp.MustCompile(pattern)}
}

func TestNewSetRejectsDuplicates(t *testing.T) {
	_, err := NewSet(stub("a", "a", `^(x)$`), stub("a", "b", `^(y)$`))
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	set, err := NewSet(
		stub("numbers", "num", `^(\d+)$`),
		stub("hex", "hex", `^(?:0x)?([0-9a-f]+)$`),
		stub("words", "word", `^word:(\w+)$`),
	)
	require.NoError(t, err)

	m, err := set.Sanitize("  word:hello ")
	require.NoError(t, err)
	assert.Equal(t, "word", m.Source())
	assert.Equal(t, "hello", m.Identifier)

	m, err = set.Sanitize("0xbeef")
	require.NoError(t, err)
	assert.Equal(t, "hex", m.Source())
	assert.Equal(t, "beef", m.Identifier)

	_, err = set.Sanitize("???")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.True(t, IsIdentifierError(err))

	_, err = set.Sanitize("123")
	require.ErrorIs(t, err, ErrAmbiguousIdentifier)
	var amb *AmbiguousIdentifierError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, []string{"hex", "num"}, amb.Sources)
	assert.Contains(t, err.Error(), "hex, num")
}

func TestSetLookups(t *testing.T) {
	set, err := NewSet(stub("zeta", "z", `^(z)$`), stub("alpha", "a", `^(a)$`))
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	all := set.All()
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[1].Name)

	r, ok := set.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, "z", r.Source)

	r, ok = set.BySource("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", r.Name)

	_, ok = set.BySource("missing")
	assert.False(t, ok)
}

func TestLoadDirMissing(t *testing.T) {
	set, err := LoadDir(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLoadDirIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.toml"), []byte(inlineConfig), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes"), 0644))

	set, err := LoadDir(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestLoadDirReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("name = "), 0644))

	_, err := LoadDir(dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.toml")
}

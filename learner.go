// Package learner carries the retriever and template configurations that
// ship with lrn.
package learner

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed config/retrievers/*.toml config/templates/*.toml
var shipped embed.FS

// Shipped config directories inside the embedded tree.
const (
	RetrieversDir = "config/retrievers"
	TemplatesDir  = "config/templates"
)

// Configs returns the embedded configuration tree.
func Configs() fs.FS { return shipped }

// Install copies the embedded files under srcDir into dst. Existing files
// are left alone unless overwrite is set. It returns the names written.
func Install(srcDir, dst string, overwrite bool) ([]string, error) {
	entries, err := fs.ReadDir(shipped, srcDir)
	if err != nil {
		return nil, fmt.Errorf("reading shipped %s: %w", srcDir, err)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dst, err)
	}

	var written []string
	for _, entry := range entries {
		target := filepath.Join(dst, entry.Name())
		if _, err := os.Stat(target); err == nil && !overwrite {
			continue
		}
		data, err := fs.ReadFile(shipped, path.Join(srcDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", target, err)
		}
		written = append(written, entry.Name())
	}
	return written, nil
}

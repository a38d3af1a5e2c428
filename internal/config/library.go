// Package config locates a learner library on disk and resolves the
// settings it runs with.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LibraryConfig is stored in .learner/config.json. Relative paths are
// resolved against the library root.
type LibraryConfig struct {
	RetrieversDir string `json:"retrievers_dir,omitempty"`
	TemplatesDir  string `json:"templates_dir,omitempty"`
	PDFDir        string `json:"pdf_dir,omitempty"`
}

const (
	LibraryDir     = ".learner"
	ConfigFile     = "config.json"
	RecordsFile    = "records.jsonl"
	CacheDir       = "cache"
	DBFile         = "records.db"
	RetrieversDir  = "retrievers"
	TemplatesDir   = "templates"
	DefaultPDFsDir = "pdfs"
)

// LibraryPath returns the path to the .learner directory from a root path.
func LibraryPath(root string) string {
	return filepath.Join(root, LibraryDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, LibraryDir, ConfigFile)
}

// RecordsPath returns the path to records.jsonl from a root path.
func RecordsPath(root string) string {
	return filepath.Join(root, LibraryDir, RecordsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir)
}

// DBPath returns the path to records.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir, DBFile)
}

// IsLibrary checks if the given path contains a learner library.
func IsLibrary(root string) bool {
	info, err := os.Stat(LibraryPath(root))
	return err == nil && info.IsDir()
}

// FindLibrary walks up from the given path to find a learner library.
func FindLibrary(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsLibrary(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoLibrary
		}
		abs = parent
	}
}

// LoadLibrary reads the library configuration. A library without a
// config file uses defaults.
func LoadLibrary(root string) (*LibraryConfig, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &LibraryConfig{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg LibraryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the library configuration.
func (c *LibraryConfig) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

// resolvePath expands ~ and anchors relative paths at base.
func resolvePath(base, path string) string {
	path = ExpandPath(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config is the resolved runtime configuration for one library. It is
// built once by the CLI and passed to the components that need it.
type Config struct {
	Root          string
	RetrieversDir string
	TemplatesDir  string
	PDFDir        string
	RecordsPath   string
	DBPath        string

	UserAgent string
	Mailto    string
	RateLimit float64
	Timeout   time.Duration
}

// Resolve combines library and global settings for the library at root.
// Library settings win over global ones, which win over defaults inside
// the .learner directory.
func Resolve(root string, lib *LibraryConfig, global *GlobalConfig) (*Config, error) {
	if lib == nil {
		lib = &LibraryConfig{}
	}
	if global == nil {
		global = &GlobalConfig{}
	}

	timeout, err := global.ParsedTimeout()
	if err != nil {
		return nil, err
	}
	if global.RateLimit < 0 {
		return nil, fmt.Errorf("rate_limit must not be negative, got %v", global.RateLimit)
	}

	libDir := LibraryPath(root)
	pick := func(libValue, globalValue, fallback string) string {
		switch {
		case libValue != "":
			return resolvePath(root, libValue)
		case globalValue != "":
			return resolvePath(root, globalValue)
		default:
			return filepath.Join(libDir, fallback)
		}
	}

	return &Config{
		Root:          root,
		RetrieversDir: pick(lib.RetrieversDir, global.RetrieversDir, RetrieversDir),
		TemplatesDir:  pick(lib.TemplatesDir, global.TemplatesDir, TemplatesDir),
		PDFDir:        pick(lib.PDFDir, "", DefaultPDFsDir),
		RecordsPath:   RecordsPath(root),
		DBPath:        DBPath(root),
		UserAgent:     global.UserAgent,
		Mailto:        global.Mailto,
		RateLimit:     global.RateLimit,
		Timeout:       timeout,
	}, nil
}

// Locate finds the library for start, falling back to the global
// library_path, and resolves its configuration.
func Locate(start string, global *GlobalConfig) (*Config, error) {
	root, err := FindLibrary(start)
	if err != nil {
		if global == nil || global.LibraryPath == "" || !IsLibrary(global.LibraryPath) {
			return nil, err
		}
		root = global.LibraryPath
	}

	lib, err := LoadLibrary(root)
	if err != nil {
		return nil, err
	}
	return Resolve(root, lib, global)
}

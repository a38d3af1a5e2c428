package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig is stored in $XDG_CONFIG_HOME/learner/config.yml.
type GlobalConfig struct {
	LibraryPath   string  `yaml:"library_path,omitempty"`
	RetrieversDir string  `yaml:"retrievers_dir,omitempty"`
	TemplatesDir  string  `yaml:"templates_dir,omitempty"`
	UserAgent     string  `yaml:"user_agent,omitempty"`
	Mailto        string  `yaml:"mailto,omitempty"`
	RateLimit     float64 `yaml:"rate_limit,omitempty"`
	Timeout       string  `yaml:"timeout,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "learner"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables that override the global config file.
const (
	EnvLibrary       = "LEARNER_LIBRARY"
	EnvRetrieversDir = "LEARNER_RETRIEVERS_DIR"
	EnvTemplatesDir  = "LEARNER_TEMPLATES_DIR"
	EnvUserAgent     = "LEARNER_USER_AGENT"
	EnvMailto        = "LEARNER_MAILTO"
	EnvRateLimit     = "LEARNER_RATE_LIMIT"
	EnvTimeout       = "LEARNER_TIMEOUT"
)

// ErrNoLibrary is returned when no library is found or configured.
var ErrNoLibrary = errors.New("not in a learner library (no .learner directory found)")

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/learner/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobal reads the global config file at path and applies environment
// overrides. A missing file yields an empty config.
func LoadGlobal(path string) (*GlobalConfig, error) {
	var cfg GlobalConfig

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	cfg.RetrieversDir = ExpandPath(cfg.RetrieversDir)
	cfg.TemplatesDir = ExpandPath(cfg.TemplatesDir)
	return &cfg, nil
}

func (c *GlobalConfig) applyEnv() error {
	for env, dst := range map[string]*string{
		EnvLibrary:       &c.LibraryPath,
		EnvRetrieversDir: &c.RetrieversDir,
		EnvTemplatesDir:  &c.TemplatesDir,
		EnvUserAgent:     &c.UserAgent,
		EnvMailto:        &c.Mailto,
		EnvTimeout:       &c.Timeout,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.RateLimit = rate
	}
	return nil
}

// Save writes the global config as YAML, creating its directory.
func (c *GlobalConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ParsedTimeout returns the configured request timeout, or zero when unset.
func (c *GlobalConfig) ParsedTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// HelpfulConfigMessage explains how to create or select a library.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No learner library found.

Create one in the current directory:
  lrn init

Or set a default library in %s:
  mkdir -p %s
  echo 'library_path: /path/to/library' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}

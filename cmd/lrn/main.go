// Package main provides the lrn CLI entry point.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/config"
	"github.com/matsen/learner/internal/fetch"
	"github.com/matsen/learner/internal/retriever"
	"github.com/matsen/learner/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors hides cobra's own usage errors, so print them here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lrn",
	Short: "Retrieve academic paper metadata from declarative source configs",
	Long: `lrn resolves paper identifiers (arXiv ids, DOIs, IACR ePrint ids and URLs)
to a source, fetches the source's metadata and maps it through TOML retriever
and template configurations into validated records.

Records are stored in git-versionable JSONL with an ephemeral SQLite index for
queries. All commands output JSON by default for easy integration with agents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail to stderr")
	rootCmd.Version = Version
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// mustLoadGlobal loads the global config, exits on error.
func mustLoadGlobal() *config.GlobalConfig {
	global, err := config.LoadGlobal(config.GlobalConfigPath())
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	return global
}

// mustLocate finds the library for the working directory and resolves its
// configuration, exits on error.
func mustLocate() *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	cfg, err := config.Locate(cwd, mustLoadGlobal())
	if err != nil {
		if errors.Is(err, config.ErrNoLibrary) {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "loading library config: %v", err)
	}
	return cfg
}

// mustOpenLibrary opens the records index, exits on error.
// The caller is responsible for calling Close() on the returned Library.
func mustOpenLibrary(cfg *config.Config) *storage.Library {
	if err := os.MkdirAll(config.CachePath(cfg.Root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	lib, err := storage.OpenLibrary(cfg.DBPath, cfg.RecordsPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return lib
}

// mustLoadRetrievers loads the configured retrievers, exits on error.
func mustLoadRetrievers(cfg *config.Config) *retriever.Set {
	set, err := retriever.Load(cfg.RetrieversDir, cfg.TemplatesDir)
	if err != nil {
		exitWithError(ExitConfigError, "loading retrievers: %v", err)
	}
	if set.Len() == 0 {
		exitWithError(ExitConfigError, "no retrievers configured in %s", cfg.RetrieversDir)
	}
	return set
}

// newClient builds the HTTP client from resolved settings.
func newClient(cfg *config.Config) *fetch.Client {
	var opts []fetch.ClientOption
	if cfg.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Mailto != "" {
		opts = append(opts, fetch.WithMailto(cfg.Mailto))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, fetch.WithRateLimit(cfg.RateLimit))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, fetch.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	return fetch.NewClient(opts...)
}

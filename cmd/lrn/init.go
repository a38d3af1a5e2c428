package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/learner"
	"github.com/matsen/learner/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new learner library",
	Long: `Initialize a new learner library in the current directory.

Creates:
  .learner/
  ├── records.jsonl   # Empty file
  ├── config.json     # Default config
  ├── retrievers/     # arxiv, doi and iacr retrievers
  ├── templates/      # paper and retrieval templates
  └── cache/          # SQLite index (gitignored)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// InitResponse is the response for the init command.
type InitResponse struct {
	Status     string   `json:"status"`
	Path       string   `json:"path"`
	Retrievers []string `json:"retrievers"`
	Templates  []string `json:"templates"`
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsLibrary(root) {
		exitWithError(ExitError, "directory already contains a learner library")
	}

	for _, dir := range []string{config.LibraryPath(root), config.CachePath(root)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitWithError(ExitError, "creating %s: %v", dir, err)
		}
	}

	recordsFile, err := os.Create(config.RecordsPath(root))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", config.RecordsFile, err)
	}
	recordsFile.Close()

	if err := (&config.LibraryConfig{}).Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	gitignore := filepath.Join(config.LibraryPath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}

	retrievers, err := learner.Install(learner.RetrieversDir, filepath.Join(config.LibraryPath(root), config.RetrieversDir), false)
	if err != nil {
		exitWithError(ExitError, "installing retrievers: %v", err)
	}
	templates, err := learner.Install(learner.TemplatesDir, filepath.Join(config.LibraryPath(root), config.TemplatesDir), false)
	if err != nil {
		exitWithError(ExitError, "installing templates: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized learner library in %s\n", root)
		fmt.Printf("  retrievers: %v\n", retrievers)
		fmt.Printf("  templates:  %v\n", templates)
	} else {
		outputJSON(InitResponse{
			Status:     "initialized",
			Path:       root,
			Retrievers: retrievers,
			Templates:  templates,
		})
	}
	return nil
}

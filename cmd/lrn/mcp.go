package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/mcpserver"
	"github.com/matsen/learner/internal/retriever"
)

var mcpWatch bool

func init() {
	mcpCmd.Flags().BoolVar(&mcpWatch, "watch", false, "Reload retrievers when their config files change")
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve resolve, retrieve and search as MCP tools over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the
resolve, retrieve and search tools for the current library.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := mustLocate()
	holder := retriever.NewHolder(mustLoadRetrievers(cfg))
	lib := mustOpenLibrary(cfg)
	defer lib.Close()

	server, err := mcpserver.New(mcpserver.Deps{
		Retrievers: holder,
		Fetcher:    newClient(cfg),
		Store:      lib,
	}, Version)
	if err != nil {
		exitWithError(ExitError, "creating mcp server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mcpWatch {
		go holder.Watch(ctx, cfg.RetrieversDir, cfg.TemplatesDir, nil)
	}

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		exitWithError(ExitError, "mcp server: %v", err)
	}
	return nil
}

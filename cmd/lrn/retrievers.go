package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/retriever"
)

var validateWatch bool

func init() {
	retrieversValidateCmd.Flags().BoolVar(&validateWatch, "watch", false, "Re-validate whenever a config file changes")
	retrieversCmd.AddCommand(retrieversListCmd)
	retrieversCmd.AddCommand(retrieversValidateCmd)
	rootCmd.AddCommand(retrieversCmd)
}

var retrieversCmd = &cobra.Command{
	Use:   "retrievers",
	Short: "Inspect retriever configurations",
}

var retrieversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured retrievers",
	Args:  cobra.NoArgs,
	RunE:  runRetrieversList,
}

var retrieversValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every retriever and template config loads",
	Long: `Load every template and retriever config and report the first error.

With --watch, keep running and re-validate after each change to the
retrievers or templates directory. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runRetrieversValidate,
}

// RetrieverInfo summarizes one retriever.
type RetrieverInfo struct {
	Name              string `json:"name"`
	Source            string `json:"source"`
	Description       string `json:"description,omitempty"`
	Pattern           string `json:"pattern"`
	Endpoint          string `json:"endpoint"`
	Format            string `json:"format"`
	ResourceTemplate  string `json:"resource_template"`
	RetrievalTemplate string `json:"retrieval_template,omitempty"`
}

// ValidateResponse is the response for retrievers validate.
type ValidateResponse struct {
	Valid      bool     `json:"valid"`
	Retrievers []string `json:"retrievers,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func runRetrieversList(cmd *cobra.Command, args []string) error {
	set := mustLoadRetrievers(mustLocate())

	infos := make([]RetrieverInfo, 0, set.Len())
	for _, r := range set.All() {
		info := RetrieverInfo{
			Name:             r.Name,
			Source:           r.Source,
			Description:      r.Description,
			Pattern:          r.Pattern.String(),
			Endpoint:         r.EndpointURL(retriever.IdentifierPlaceholder),
			Format:           r.Format.Type,
			ResourceTemplate: r.ResourceTemplate.Name,
		}
		if r.RetrievalTemplate != nil {
			info.RetrievalTemplate = r.RetrievalTemplate.Name
		}
		infos = append(infos, info)
	}

	if humanOutput {
		for _, info := range infos {
			fmt.Printf("%-8s %s\n", info.Name, info.Description)
			fmt.Printf("         %s (%s)\n", info.Endpoint, info.Format)
		}
	} else {
		outputJSON(infos)
	}
	return nil
}

func runRetrieversValidate(cmd *cobra.Command, args []string) error {
	cfg := mustLocate()
	holder := retriever.NewHolder(nil)

	report := func(set *retriever.Set, err error) {
		resp := ValidateResponse{Valid: err == nil}
		if err != nil {
			resp.Error = err.Error()
		} else {
			for _, r := range set.All() {
				resp.Retrievers = append(resp.Retrievers, r.Name)
			}
		}
		if humanOutput {
			if err != nil {
				fmt.Printf("invalid: %v\n", err)
			} else {
				fmt.Printf("ok: %d retrievers %v\n", len(resp.Retrievers), resp.Retrievers)
			}
		} else {
			outputJSON(resp)
		}
	}

	set, err := holder.Reload(cfg.RetrieversDir, cfg.TemplatesDir)
	report(set, err)

	if !validateWatch {
		if err != nil {
			os.Exit(ExitConfigError)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := holder.Watch(ctx, cfg.RetrieversDir, cfg.TemplatesDir, report); err != nil && ctx.Err() == nil {
		exitWithError(ExitError, "watching configs: %v", err)
	}
	return nil
}

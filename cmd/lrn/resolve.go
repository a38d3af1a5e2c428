package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier-or-url>",
	Short: "Show which source an identifier belongs to",
	Long: `Match an identifier against every retriever's pattern without fetching
anything. Exactly one retriever must match.

Examples:
  lrn resolve arxiv:2301.07041
  lrn resolve https://doi.org/10.1038/nature14539`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

// ResolveResponse is the response for the resolve command.
type ResolveResponse struct {
	Retriever  string `json:"retriever"`
	Source     string `json:"source"`
	Identifier string `json:"identifier"`
	URL        string `json:"url"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	set := mustLoadRetrievers(mustLocate())

	m, err := set.Sanitize(args[0])
	if err != nil {
		exitWithErr("resolving", err)
	}

	resp := ResolveResponse{
		Retriever:  m.Retriever.Name,
		Source:     m.Source(),
		Identifier: m.Identifier,
		URL:        m.Retriever.EndpointURL(m.Identifier),
	}
	if humanOutput {
		fmt.Printf("%s %s\n  via %s: %s\n", resp.Source, resp.Identifier, resp.Retriever, resp.URL)
	} else {
		outputJSON(resp)
	}
	return nil
}

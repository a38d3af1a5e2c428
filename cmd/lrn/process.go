package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/learner/internal/retriever"
)

func init() {
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <retriever> <response-file> <identifier>",
	Short: "Turn a saved source response into a record",
	Long: `Run a retriever's normalize, map and validate steps over a response body
read from a file (or - for stdin). Nothing is fetched or stored.

Examples:
  lrn process arxiv response.xml 2301.07041
  curl -s https://api.crossref.org/works/10.1038/nature14539 | lrn process doi - 10.1038/nature14539`,
	Args: cobra.ExactArgs(3),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	set := mustLoadRetrievers(mustLocate())

	r, ok := set.Get(args[0])
	if !ok {
		exitWithErr("processing", fmt.Errorf("%w: %s", retriever.ErrUnknownRetriever, args[0]))
	}

	data, err := readInput(args[1])
	if err != nil {
		exitWithError(ExitError, "reading response: %v", err)
	}

	rec, err := r.Process(data, args[2])
	if err != nil {
		exitWithErr("processing", err)
	}

	if humanOutput {
		printRecordDetail(rec)
	} else {
		outputJSON(rec)
	}
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

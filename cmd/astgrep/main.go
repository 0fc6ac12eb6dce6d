// Command astgrep is the CLI consumer exercising the matching core end to
// end, in the cobra idiom the teacher already uses for its own demo CLI
// (demo/cmd/main.go): a root command, subcommands registered via
// AddCommand, errors printed to stderr and a non-zero exit on failure.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/astgrep/internal/config"
)

var (
	cfg     *config.Config
	logger  *log.Logger
	verbose bool
)

func main() {
	logger = log.New(os.Stderr, "astgrep: ", 0)
	cfg = config.Load()

	root := &cobra.Command{
		Use:   "astgrep",
		Short: "Structural pattern matcher for JavaScript and TypeScript",
		Long:  "astgrep locates structural matches of a pattern in JS/TS source and evaluates compiled rule bytecode against it.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				cfg.Verbose = true
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newMatchCmd(), newScanCmd(), newNodeInfoCmd(), newCacheCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command tspyc translates a tree of TypeScript or JavaScript sources into
// Python, one file at a time, following the layout and flag surface in
// spec section 6. It is a thin wrapper over internal/cli's worker pool,
// in the teacher's entry-point style (cmd/morfx/main.go: parse flags, run,
// print a summary, set the exit code).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oxhq/tspyc/internal/cli"
	"github.com/oxhq/tspyc/internal/config"
	"github.com/oxhq/tspyc/internal/logging"
	"github.com/oxhq/tspyc/internal/translate"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "tspyc: %v\n", err)
		os.Exit(exitCodeFor(err))
	}

	minLevel := logging.INFO
	if cfg.Debug {
		minLevel = logging.DEBUG
	}
	log := logging.New(minLevel)

	summary, err := cli.Run(context.Background(), cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tspyc: %v\n", err)
		os.Exit(1)
	}

	printSummary(summary)

	if len(summary.Results) == 0 {
		os.Exit(1)
	}
	os.Exit(0)
}

func printSummary(s *cli.Summary) {
	ok := len(s.Results) - s.FileErrorCount
	fmt.Printf("\n%d file(s) translated, %d error(s)\n", ok, s.FileErrorCount)
	for _, r := range s.Results {
		if !r.Success {
			fmt.Fprintf(os.Stderr, "  %s: %s: %s\n", r.Path, r.ErrorCode, r.Diagnostic)
		}
	}
}

func exitCodeFor(err error) int {
	if _, ok := err.(*translate.ConfigError); ok {
		return 2
	}
	return 1
}

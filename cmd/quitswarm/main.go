/*
Package main is the entry point for the quitswarm CLI.

quitswarm scores whether a person should quit their job using a panel of
four deterministic specialist scorers blended by learned weights, with a
similarity-based case memory and a feedback loop that nudges the weights
from real outcomes.

Usage:
  quitswarm [command]

Available Commands:
  decide      Score a quit-or-stay profile with the specialist swarm
  feedback    Report the outcome of a past case
  weights     Show learned specialist weights and accuracy
  history     List persisted decision cases
  search      Keyword search over past cases
  serve       Run the HTTP API
  help        Help about any command

Examples:
  # Score a profile
  quitswarm decide --input profile.json

  # Report an outcome later
  quitswarm feedback --case-id <id> --quit --success

  # Inspect what the swarm has learned
  quitswarm weights
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quitswarm/quitswarm/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quitswarm",
		Short: "Swarm decision engine for quit-your-job due diligence",
		Long: `quitswarm runs a panel of four specialist scorers — finance risk,
career market, family stability, and LinkedIn positioning — and blends
their votes with weights learned from outcome feedback.

Each decision is persisted as a case; similar past cases with known
outcomes nudge new scores, and feedback on real outcomes adjusts each
specialist's influence over time.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(cli.NewDecideCmd())
	rootCmd.AddCommand(cli.NewFeedbackCmd())
	rootCmd.AddCommand(cli.NewWeightsCmd())
	rootCmd.AddCommand(cli.NewHistoryCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quitswarm/quitswarm/internal/memory"
)

// NewFeedbackCmd creates the 'feedback' command: report the outcome of a
// past case and update specialist weights.
func NewFeedbackCmd() *cobra.Command {
	var caseID string
	var didQuit bool
	var wasSuccessful bool
	var months int
	var stress int
	var incomeDelta float64
	var notes string
	var memoryPath string

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Report the outcome of a past case",
		Long: `Attach an outcome report to a decided case. When the user actually
quit, each specialist's weight is nudged up or down depending on whether
its verdict matched the outcome.`,
		Example: `  quitswarm feedback --case-id 5f0c... --quit --success
  quitswarm feedback --case-id 5f0c... --quit --success=false --stress 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fb := memory.Feedback{
				CaseID:        caseID,
				DidUserQuit:   didQuit,
				WasSuccessful: wasSuccessful,
				Notes:         notes,
			}
			if cmd.Flags().Changed("months") {
				fb.MonthsAfterQuit = &months
			}
			if cmd.Flags().Changed("stress") {
				fb.StressScore = &stress
			}
			if cmd.Flags().Changed("income-delta") {
				fb.IncomeDeltaUSD = &incomeDelta
			}
			return runFeedback(fb, memoryPath)
		},
	}

	cmd.Flags().StringVar(&caseID, "case-id", "", "Case identifier the feedback refers to")
	cmd.Flags().BoolVar(&didQuit, "quit", false, "Whether the user actually quit")
	cmd.Flags().BoolVar(&wasSuccessful, "success", false, "Whether the transition was successful")
	cmd.Flags().IntVar(&months, "months", 0, "Months since quitting")
	cmd.Flags().IntVar(&stress, "stress", 0, "Stress score from 1 to 10")
	cmd.Flags().Float64Var(&incomeDelta, "income-delta", 0, "Income change in USD")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	cmd.Flags().StringVar(&memoryPath, "memory", "", "Override the swarm memory path")
	cmd.MarkFlagRequired("case-id")

	return cmd
}

// runFeedback validates and submits the feedback record.
func runFeedback(fb memory.Feedback, memoryPath string) error {
	if err := fb.Validate(); err != nil {
		return fmt.Errorf("invalid feedback: %w", err)
	}

	cfg := loadConfig()
	path, err := resolveMemoryPath(memoryPath, cfg)
	if err != nil {
		return err
	}

	engine, cleanup := buildEngine(path, cfg, true)
	defer cleanup()

	result, err := engine.SubmitFeedback(fb)
	if err != nil {
		return err
	}

	return printJSON(result)
}

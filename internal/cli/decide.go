package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/quitswarm/quitswarm/internal/memory"
	"github.com/quitswarm/quitswarm/internal/swarm"
)

// quitPlan is the condensed plan-style view of a decision.
type quitPlan struct {
	RiskSummary           riskSummary      `json:"risk_summary"`
	RecommendedQuitWindow string           `json:"recommended_quit_window"`
	Rationale             []string         `json:"rationale"`
	ActionPlan            swarm.ActionPlan `json:"action_plan"`
	RedFlags              []string         `json:"red_flags"`
}

type riskSummary struct {
	RunwayMonths   float64 `json:"runway_months"`
	ReadinessScore int     `json:"readiness_score_0_to_100"`
	Recommendation string  `json:"recommendation"`
}

// NewDecideCmd creates the 'decide' command: score a profile and persist
// the resulting case.
func NewDecideCmd() *cobra.Command {
	var inputPath string
	var caseID string
	var memoryPath string
	var planView bool

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Score a quit-or-stay profile with the specialist swarm",
		Long: `Run the full swarm on a due-diligence input record:
all four specialists, weighted aggregation, similar-case adjustment,
and action-plan synthesis. The decision is persisted as a new case.`,
		Example: `  quitswarm decide --input profile.json
  cat profile.json | quitswarm decide --input -
  quitswarm decide --input profile.json --plan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecide(inputPath, caseID, memoryPath, planView)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to the input JSON file ('-' for stdin)")
	cmd.Flags().StringVar(&caseID, "case-id", "", "Reuse a caller-supplied case identifier")
	cmd.Flags().StringVar(&memoryPath, "memory", "", "Override the swarm memory path")
	cmd.Flags().BoolVar(&planView, "plan", false, "Print the condensed quit-plan view")
	cmd.MarkFlagRequired("input")

	return cmd
}

// runDecide reads and validates the input record, runs the engine, and
// prints the decision.
func runDecide(inputPath, caseID, memoryPath string, planView bool) error {
	in, err := readInput(inputPath)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	cfg := loadConfig()
	path, err := resolveMemoryPath(memoryPath, cfg)
	if err != nil {
		return err
	}

	engine, cleanup := buildEngine(path, cfg, true)
	defer cleanup()

	decision, err := engine.Decide(context.Background(), *in, caseID)
	if err != nil {
		return err
	}

	if planView {
		return printJSON(toQuitPlan(*in, decision))
	}
	return printJSON(decision)
}

// toQuitPlan condenses a decision into the plan-style summary.
func toQuitPlan(in memory.Input, d *swarm.Decision) quitPlan {
	runway := math.Round(swarm.RunwayMonths(in.FinancialSituation)*100) / 100
	return quitPlan{
		RiskSummary: riskSummary{
			RunwayMonths:   runway,
			ReadinessScore: d.AggregateScore,
			Recommendation: d.Recommendation,
		},
		RecommendedQuitWindow: d.RecommendedQuitWindow,
		Rationale:             d.Rationale,
		ActionPlan:            d.ActionPlan,
		RedFlags:              d.RedFlags,
	}
}

// readInput parses the input record from a file or stdin.
func readInput(path string) (*memory.Input, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var in memory.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	return &in, nil
}

// printJSON writes indented JSON to stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

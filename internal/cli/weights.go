package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWeightsCmd creates the 'weights' command for inspecting learned
// specialist weights and accuracy.
func NewWeightsCmd() *cobra.Command {
	var jsonOutput bool
	var memoryPath string

	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Show learned specialist weights and accuracy",
		Example: `  quitswarm weights
  quitswarm weights --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeights(jsonOutput, memoryPath)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVar(&memoryPath, "memory", "", "Override the swarm memory path")

	return cmd
}

// runWeights displays the weight table and scorecard.
func runWeights(jsonOutput bool, memoryPath string) error {
	cfg := loadConfig()
	path, err := resolveMemoryPath(memoryPath, cfg)
	if err != nil {
		return err
	}

	engine, cleanup := buildEngine(path, cfg, false)
	defer cleanup()

	weights := engine.Weights()
	scorecard := engine.Scorecard()

	if jsonOutput {
		return printJSON(map[string]interface{}{
			"agent_weights":   weights,
			"agent_scorecard": scorecard,
		})
	}

	fmt.Printf("Specialist weights (%d agents):\n\n", len(weights))
	for agent, weight := range weights {
		fmt.Printf("  %s\n", agent)
		fmt.Printf("    Weight:   %.3f\n", weight)
		if card, ok := scorecard[agent]; ok && card.Total > 0 {
			fmt.Printf("    Accuracy: %d/%d\n", card.Correct, card.Total)
		} else {
			fmt.Printf("    Accuracy: no quit feedback yet\n")
		}
		fmt.Println()
	}

	return nil
}

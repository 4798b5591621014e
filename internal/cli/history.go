package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the 'history' command for listing persisted cases.
func NewHistoryCmd() *cobra.Command {
	var jsonOutput bool
	var memoryPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted decision cases",
		Example: `  quitswarm history
  quitswarm history --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(jsonOutput, memoryPath)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVar(&memoryPath, "memory", "", "Override the swarm memory path")

	return cmd
}

// runHistory displays the case list in insertion order.
func runHistory(jsonOutput bool, memoryPath string) error {
	cfg := loadConfig()
	path, err := resolveMemoryPath(memoryPath, cfg)
	if err != nil {
		return err
	}

	engine, cleanup := buildEngine(path, cfg, false)
	defer cleanup()

	cases := engine.Cases()
	if jsonOutput {
		return printJSON(cases)
	}

	if len(cases) == 0 {
		fmt.Println("No cases recorded yet.")
		fmt.Println("Run 'quitswarm decide --input profile.json' to score a profile.")
		return nil
	}

	fmt.Printf("Recorded cases (%d):\n\n", len(cases))
	for _, c := range cases {
		feedbackMark := " "
		if c.Feedback != nil {
			feedbackMark = "*"
		}
		fmt.Printf("  %s %s\n", feedbackMark, c.CaseID)
		fmt.Printf("    Decided: %s\n", c.Timestamp.Format("2006-01-02 15:04"))
		fmt.Printf("    Score:   %d/100\n", c.AggregateScore)
		fmt.Printf("    Advice:  %s\n", c.Recommendation)
		fmt.Println()
	}
	fmt.Println("Cases marked * have outcome feedback attached.")

	return nil
}

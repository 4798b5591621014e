package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quitswarm/quitswarm/internal/search"
)

// NewSearchCmd creates the 'search' command for keyword search over the
// case history.
func NewSearchCmd() *cobra.Command {
	var limit int
	var memoryPath string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Keyword search over past cases",
		Long: `Search recorded cases by recommendation text, role, goal, and
specialist reasons. This is a lookup aid; it does not affect scoring.`,
		Example: `  quitswarm search "health insurance"
  quitswarm search runway --limit 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "), limit, memoryPath)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	cmd.Flags().StringVar(&memoryPath, "memory", "", "Override the swarm memory path")

	return cmd
}

// runSearch indexes the case history in memory and runs the query.
func runSearch(query string, limit int, memoryPath string) error {
	cfg := loadConfig()
	path, err := resolveMemoryPath(memoryPath, cfg)
	if err != nil {
		return err
	}

	engine, cleanup := buildEngine(path, cfg, false)
	defer cleanup()

	cases := engine.Cases()
	if len(cases) == 0 {
		fmt.Println("No cases recorded yet.")
		return nil
	}

	indexer, err := search.NewIndexer()
	if err != nil {
		return err
	}
	defer indexer.Close()

	if err := indexer.IndexCases(cases); err != nil {
		return err
	}

	results, err := indexer.Search(query, limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Printf("No cases match %q.\n", query)
		return nil
	}

	fmt.Printf("Matching cases (%d):\n\n", len(results))
	for _, r := range results {
		fmt.Printf("  %s (score %.3f)\n", r.CaseID, r.Score)
		if r.Role != "" {
			fmt.Printf("    Role:   %s\n", r.Role)
		}
		fmt.Printf("    Advice: %s\n", r.Recommendation)
		fmt.Println()
	}

	return nil
}

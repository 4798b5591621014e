/*
Package cli implements the quitswarm subcommands.

Every command funnels into the swarm engine's two entry points (decide and
feedback) or reads the persisted memory for display. Input validation
happens here, before records reach the core.
*/
package cli

import (
	"log"
	"os"

	"github.com/quitswarm/quitswarm/internal/config"
	"github.com/quitswarm/quitswarm/internal/history"
	"github.com/quitswarm/quitswarm/internal/memory"
	"github.com/quitswarm/quitswarm/internal/refine"
	"github.com/quitswarm/quitswarm/internal/swarm"
)

// loadConfig loads the user configuration, falling back to defaults when
// the file is missing or unreadable.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.NewConfig()
	}
	return cfg
}

// resolveMemoryPath picks the memory path from the --memory flag, the
// config file, or the default location, in that order.
func resolveMemoryPath(flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.MemoryPath != "" {
		return cfg.MemoryPath, nil
	}
	return memory.DefaultPath()
}

// buildEngine assembles an engine from config: file store, optional
// history journal, optional narrative refiner. The returned cleanup
// flushes the journal and must be called before exit.
func buildEngine(memoryPath string, cfg *config.Config, withJournal bool) (*swarm.Engine, func()) {
	engine := swarm.NewEngine(memory.NewFileStore(memoryPath))
	engine.SetTopSimilar(cfg.Settings.TopSimilarCases)

	cleanup := func() {}
	if withJournal {
		dbPath := cfg.HistoryDBPath
		if dbPath == "" {
			var err error
			dbPath, err = history.DefaultDBPath()
			if err != nil {
				log.Printf("Warning: history journal disabled: %v", err)
			}
		}
		if dbPath != "" {
			tracker := history.NewTracker(history.NewStorage(dbPath))
			engine.SetRecorder(tracker)
			cleanup = tracker.Stop
		}
	}

	if cfg.Settings.RefinerEnabled {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			log.Printf("Warning: refiner enabled but ANTHROPIC_API_KEY is not set; using deterministic text")
		} else {
			refiner, err := refine.NewAnthropicRefiner(refine.Config{
				APIKey: apiKey,
				Model:  cfg.Settings.RefinerModel,
			})
			if err != nil {
				log.Printf("Warning: failed to create refiner: %v", err)
			} else {
				engine.SetRefiner(refiner)
			}
		}
	}

	return engine, cleanup
}

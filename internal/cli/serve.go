package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quitswarm/quitswarm/internal/config"
	"github.com/quitswarm/quitswarm/internal/server"
)

// NewServeCmd creates the 'serve' command for running the HTTP API.
func NewServeCmd() *cobra.Command {
	var addr string
	var memoryPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the quitswarm HTTP server.

Endpoints:
  POST /api/v1/decide        - score a profile, persist a case
  POST /api/v1/feedback      - report an outcome for a past case
  GET  /api/v1/weights       - learned weights and accuracy
  GET  /api/v1/cases/search  - keyword search over past cases
  GET  /health               - health check`,
		Example: `  quitswarm serve
  quitswarm serve --addr localhost:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, memoryPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&memoryPath, "memory", "", "Override the swarm memory path")

	return cmd
}

// runServe starts the HTTP server with graceful shutdown on
// SIGINT/SIGTERM/SIGQUIT.
func runServe(addr, memoryPath string) error {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path, err := resolveMemoryPath(memoryPath, cfg)
	if err != nil {
		return err
	}

	engine, cleanup := buildEngine(path, cfg, true)
	defer cleanup()

	if addr == "" {
		addr = cfg.Settings.ServeAddr
	}
	srv := server.New(engine, addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	log.Printf("Listening on %s (memory: %s)", addr, path)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v, shutting down gracefully...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
			return err
		}

		log.Println("Shutdown complete")
		return nil

	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

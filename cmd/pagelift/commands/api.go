package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagelift/backend/internal/api"
	"github.com/pagelift/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the scoring API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                                        - Health check
  POST /api/pages/{pageId}/analysis                   - Ingest a generator analysis
  POST /api/pages/{pageId}/deploy                     - Record a content deployment
  GET  /api/pages/{pageId}/deployments                - Deployment history
  GET  /api/pages/{pageId}/ratings                    - Section rating map
  GET  /api/pages/{pageId}/recommendations/{section}  - Recommendation texts
  GET  /api/pages/{pageId}/score                      - Page score
  POST /api/pages/{pageId}/score/recompute            - Recompute a page score
  GET  /api/sites/{siteId}/metrics                    - Site metrics snapshot
  POST /api/sites/{siteId}/recompute                  - Recompute a whole site
  POST /api/recompute                                 - Recompute everything
  WS   /ws/scores                                     - Score update stream

Example:
  go run ./cmd/pagelift api
  go run ./cmd/pagelift api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== pagelift API Server ===")

	svcs, err := buildServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	if apiPort != "" {
		svcs.cfg.Port = apiPort
	}

	log := svcs.log
	log.WithFields(map[string]interface{}{
		"port": svcs.cfg.Port,
		"env":  svcs.cfg.Env,
	}).Info("Initializing API server")

	// Dashboard event hub feeds off page score updates
	hub := api.NewHub(log)
	svcs.scores.SetNotifier(hub)

	scoreHandler := handlers.NewScoreHandler(svcs.store, svcs.scores, svcs.metrics, log)
	analysisHandler := handlers.NewAnalysisHandler(svcs.analysis, svcs.store, log)

	router := api.NewRouter(svcs.cfg, scoreHandler, analysisHandler, hub, log)
	server := api.New(svcs.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", svcs.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

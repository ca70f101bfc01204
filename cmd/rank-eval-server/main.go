// Package main provides the Rank Eval server binary.
// The server exposes HTTP endpoints for generation and retrieval metrics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rankeval/rank-eval/internal/config"
	"github.com/rankeval/rank-eval/internal/pkg/logger"
	"github.com/rankeval/rank-eval/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rank-eval-server",
		Short: "Rank Eval Server - HTTP evaluation metrics service",
		Long: `Rank Eval Server scores question-answering pipelines over HTTP.

The server exposes:
  - POST /v1/metrics/generation for answer quality metrics
  - POST /v1/metrics/retrieval for top-k retrieval accuracy
  - GET  /v1/runs for recent evaluation run history

Examples:
  rank-eval-server                      # Start with defaults
  rank-eval-server --port 9090          # Custom HTTP port
  rank-eval-server -c config.yaml       # Load a config file`,
		RunE:         runServer,
		SilenceUsage: true,
	}

	// Server flags
	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().IntP("port", "p", 8080, "HTTP server port")
	rootCmd.Flags().String("host", "0.0.0.0", "server host")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rank-eval-server %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")

	// Load config
	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override from flags
	if cmd.Flags().Changed("port") {
		appCfg.Port = port
	}
	if cmd.Flags().Changed("host") {
		appCfg.Host = host
	}

	// Setup logger
	logLevel := appCfg.Log.Level
	if verbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, appCfg.Log.Format)

	log.Info("Starting Rank Eval Server",
		"version", version,
		"addr", appCfg.Address(),
		"dataset", appCfg.Metrics.DatasetName,
		"history", appCfg.History.Type,
		"bus", appCfg.Bus.Type,
	)

	srvCfg := server.DefaultConfig()
	srvCfg.Host = appCfg.Host
	srvCfg.Port = appCfg.Port
	srvCfg.Version = version

	srv, err := server.New(srvCfg, *appCfg, log)
	if err != nil {
		return err
	}

	// Start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("Shutdown signal received")
	}

	// Graceful shutdown
	if err := srv.Stop(context.Background()); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}

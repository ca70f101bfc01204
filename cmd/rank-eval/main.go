package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rankeval/rank-eval/internal/config"
	"github.com/rankeval/rank-eval/internal/eval"
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
		Use:   "rank-eval",
		Short: "Rank Eval - retrieval and generation quality metrics",
		Long: `Rank Eval scores question-answering pipelines: exact match, token-level
F1/precision/recall, contains match, corpus BLEU, and top-k retrieval
accuracy over retrieved contexts.

Run 'rank-eval evaluate --input batch.json' to score a batch offline.
Run 'rank-eval serve' to start the HTTP evaluation server.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(
		evaluateCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// batchInput is the JSON shape accepted by the evaluate command.
type batchInput struct {
	Documents   []eval.Document `json:"documents"`
	Predictions []string        `json:"predictions"`
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score an evaluation batch from a JSON file",
		Long: `Score a batch of documents against model predictions.

The input file holds a JSON object with "documents" and "predictions".
Generation metrics are computed when predictions are present; retrieval
metrics are computed when documents carry retrieved contexts.`,
		RunE: runEvaluate,
	}

	cmd.Flags().StringP("input", "i", "", "input JSON batch file (required)")
	cmd.Flags().String("dataset", "default", "dataset name for reporting")
	cmd.Flags().IntSlice("ks", nil, "retrieval cutoffs (default 1,5,10,20,50,100)")
	cmd.Flags().Bool("use-reordered", false, "score reranked context order when present")
	cmd.Flags().Bool("bleu", false, "include corpus BLEU")
	cmd.Flags().Bool("smooth", false, "apply add-one BLEU smoothing")
	cmd.Flags().Int("max-order", 4, "maximum BLEU n-gram order")
	cmd.Flags().String("format", "text", "output format (text, json)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	dataset, _ := cmd.Flags().GetString("dataset")
	ks, _ := cmd.Flags().GetIntSlice("ks")
	useReordered, _ := cmd.Flags().GetBool("use-reordered")
	includeBleu, _ := cmd.Flags().GetBool("bleu")
	smooth, _ := cmd.Flags().GetBool("smooth")
	maxOrder, _ := cmd.Flags().GetInt("max-order")
	format, _ := cmd.Flags().GetString("format")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logLevel := "warn"
	if verbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, "text")

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var batch batchInput
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}

	calc, err := eval.NewCalculator(eval.Config{
		DatasetName:  dataset,
		BleuMaxOrder: maxOrder,
		BleuSmooth:   smooth,
		IncludeBleu:  includeBleu,
	}, log)
	if err != nil {
		return err
	}

	results := make(map[string]float64)

	if len(batch.Predictions) > 0 {
		generation, err := calc.GenerationMetrics(cmd.Context(), batch.Documents, batch.Predictions)
		if err != nil {
			return err
		}
		for name, score := range generation {
			results[name] = score
		}
	}

	if hasContexts(batch.Documents) {
		for name, score := range calc.RetrievalMetrics(batch.Documents, ks, useReordered) {
			results[name] = score
		}
	}

	if len(results) == 0 {
		return fmt.Errorf("nothing to score: input has no predictions and no retrieved contexts")
	}

	return printResults(cmd.OutOrStdout(), dataset, len(batch.Documents), results, format)
}

func hasContexts(documents []eval.Document) bool {
	for _, doc := range documents {
		if len(doc.Contexts) > 0 || len(doc.ReorderContexts) > 0 {
			return true
		}
	}
	return false
}

func printResults(out io.Writer, dataset string, documents int, results map[string]float64, format string) error {
	if format == "json" {
		payload := map[string]any{
			"dataset":   dataset,
			"documents": documents,
			"metrics":   results,
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "dataset: %s (%d documents)\n", dataset, documents)
	for _, name := range names {
		fmt.Fprintf(out, "  %-16s %.4f\n", name, results[name])
	}
	return nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP evaluation server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")
			port, _ := cmd.Flags().GetInt("port")
			host, _ := cmd.Flags().GetString("host")

			appCfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				appCfg.Port = port
			}
			if cmd.Flags().Changed("host") {
				appCfg.Host = host
			}

			logLevel := appCfg.Log.Level
			if verbose {
				logLevel = "debug"
			}
			log := logger.New(logLevel, appCfg.Log.Format)

			srvCfg := server.DefaultConfig()
			srvCfg.Host = appCfg.Host
			srvCfg.Port = appCfg.Port
			srvCfg.Version = version

			srv, err := server.New(srvCfg, *appCfg, log)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				log.Info("Shutdown signal received")
				return srv.Stop(context.Background())
			}
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "HTTP server port")
	cmd.Flags().String("host", "0.0.0.0", "HTTP server host")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rank-eval %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}

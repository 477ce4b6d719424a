package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okulov/fairline/internal/pipeline"
	"github.com/okulov/fairline/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchAlpha       float64
	batchConcurrency int
	batchTimeout     time.Duration
	batchMarketURL   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <paths-file>",
	Short: "Fuse multiple evidence files concurrently",
	Long: `Batch reads a file of evidence-file paths (one per line, # for
comments) and fuses each concurrently. Safe at any concurrency because
each fusion is an independent pure computation.

Example:
  fairline batch questions.txt --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Float64Var(&batchAlpha, "alpha", 0, "market trust weight applied to every file")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "number of concurrent fusions")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "overall batch timeout")
	batchCmd.Flags().StringVar(&batchMarketURL, "market-url", "", "market price endpoint (optional)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	listPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if batchMarketURL != "" {
		cfg.Market.Endpoint = batchMarketURL
	}

	p := pipeline.NewPipeline(cfg)
	processor := worker.NewBatchProcessor(p, batchConcurrency)

	results, err := processor.ProcessFile(ctx, listPath, batchAlpha)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
			continue
		}
		line := fmt.Sprintf("✓ %s: neutral=%.3f", r.Path, r.Report.Result.PNeutral)
		if r.Report.Result.PAware != nil {
			line += fmt.Sprintf(" aware=%.3f", *r.Report.Result.PAware)
		}
		fmt.Println(line)
	}

	fmt.Printf("\n%d fused, %d failed\n", len(results)-failures, failures)
	if failures > 0 {
		return fmt.Errorf("%d of %d fusions failed", failures, len(results))
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/okulov/fairline/internal/pipeline"
	"github.com/okulov/fairline/internal/worker"
	"github.com/spf13/cobra"
)

var (
	sensPrior       float64
	sensConcurrency int
	sensTimeout     time.Duration
)

// sensitivityCmd represents the sensitivity command
var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity <evidence.json>",
	Short: "Sweep the correlation assumption and show how the estimate moves",
	Long: `Sensitivity re-aggregates the same evidence under a grid of default
intra-cluster correlation (rho) hypotheses, from fully independent (0.0)
to nearly redundant (0.9). A wide spread means the estimate hinges on how
much of the reporting is secretly the same story.

Example:
  fairline sensitivity evidence.json --prior 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: runSensitivity,
}

func init() {
	rootCmd.AddCommand(sensitivityCmd)

	sensitivityCmd.Flags().Float64Var(&sensPrior, "prior", 0.5, "prior probability in (0,1)")
	sensitivityCmd.Flags().IntVar(&sensConcurrency, "concurrency", 4, "number of concurrent aggregations")
	sensitivityCmd.Flags().DurationVar(&sensTimeout, "timeout", time.Minute, "overall timeout")
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sensTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	evidence, err := pipeline.LoadEvidence(args[0])
	if err != nil {
		return fmt.Errorf("load evidence: %w", err)
	}

	runner := worker.NewSensitivityRunner(sensConcurrency, cfg.Scoring)
	points := runner.Run(ctx, sensPrior, evidence, nil)

	fmt.Printf("\n%-6s %s\n", "rho", "neutral probability")
	for _, p := range points {
		if p.Error != nil {
			fmt.Printf("%-6.1f error: %v\n", p.Rho, p.Error)
			continue
		}
		fmt.Printf("%-6.1f %.3f\n", p.Rho, p.PNeutral)
	}

	if len(points) > 1 {
		first, last := points[0], points[len(points)-1]
		if first.Error == nil && last.Error == nil {
			fmt.Printf("\nSpread: %.3f (rho=%.1f) to %.3f (rho=%.1f)\n",
				first.PNeutral, first.Rho, last.PNeutral, last.Rho)
		}
	}
	fmt.Println()

	return nil
}

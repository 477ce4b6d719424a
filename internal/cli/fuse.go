package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okulov/fairline/internal/model"
	"github.com/okulov/fairline/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	question     string
	critiqueFile string
	priorFlag    float64
	alphaFlag    float64
	outJSON      string
	outMD        string
	timeout      time.Duration
	marketURL    string
	llmProvider  string
	llmModel     string
)

// fuseCmd represents the fuse command
var fuseCmd = &cobra.Command{
	Use:   "fuse <evidence.json>",
	Short: "Fuse an evidence file into a calibrated probability",
	Long: `Fuse aggregates a JSON file of quality-scored evidence into a single
calibrated probability for a yes/no question:
- Scores each item into a signed, tier-capped log-likelihood ratio
- Clusters correlated reporting and discounts redundancy
- Accumulates log-odds into a market-unaware posterior
- Optionally blends the market price under a bounded trust weight
- Optionally applies critic feedback in a second pass

Example:
  fairline fuse evidence.json --question "Will the merger close in 2026?"
  fairline fuse evidence.json --critique critique.json --md report.md
  fairline fuse evidence.json --market-url https://clob.example/price/Q123 --alpha 0.1`,
	Args: cobra.ExactArgs(1),
	RunE: runFuse,
}

func init() {
	rootCmd.AddCommand(fuseCmd)

	fuseCmd.Flags().StringVarP(&question, "question", "q", "", "the yes/no question text")
	fuseCmd.Flags().StringVar(&critiqueFile, "critique", "", "critique JSON path (enables the refinement pass)")
	fuseCmd.Flags().Float64Var(&priorFlag, "prior", 0, "prior probability in (0,1); 0 means derive from market or default to 0.5")
	fuseCmd.Flags().Float64Var(&alphaFlag, "alpha", 0.1, "market trust weight in [0,1]; 0 disables blending")

	fuseCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	fuseCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	fuseCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall run timeout")

	fuseCmd.Flags().StringVar(&marketURL, "market-url", "", "market price endpoint (optional)")

	fuseCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "relevance classifier provider (openai, ollama; optional)")
	fuseCmd.Flags().StringVar(&llmModel, "llm-model", "", "relevance classifier model name")
}

func runFuse(cmd *cobra.Command, args []string) error {
	evidencePath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Fusing: %s\n", evidencePath)
		fmt.Fprintf(os.Stderr, "Alpha: %v\n", alphaFlag)
		if cfg.Market.Endpoint != "" {
			fmt.Fprintf(os.Stderr, "Market: %s\n", cfg.Market.Endpoint)
		}
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg)

	req := pipeline.FuseRequest{
		Question:     question,
		EvidencePath: evidencePath,
		CritiquePath: critiqueFile,
		Alpha:        alphaFlag,
	}
	if priorFlag != 0 {
		prior := priorFlag
		req.Prior = &prior
	}

	report, err := p.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("fuse failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scored %d evidence items\n", report.EvidenceCount)
		fmt.Fprintf(os.Stderr, "✓ Grouped into %d clusters\n", len(report.Result.Clusters))
		fmt.Fprintf(os.Stderr, "✓ Neutral probability: %.3f\n", report.Result.PNeutral)
		if report.Result.PAware != nil {
			fmt.Fprintf(os.Stderr, "✓ Market-aware probability: %.3f\n", *report.Result.PAware)
		}
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(report)
	return nil
}

// buildConfig assembles configuration from defaults, then flags
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose

	if marketURL != "" {
		cfg.Market.Endpoint = marketURL
	}

	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

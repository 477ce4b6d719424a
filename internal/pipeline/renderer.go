package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/okulov/fairline/internal/model"
)

// Renderer writes fusion reports as JSON, Markdown, and a stdout summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Fairline Report\n\n")
	fmt.Fprintf(&b, "**Question:** %s\n\n", report.Question)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "## Estimate\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Prior (%s) | %.3f |\n", report.PriorSource, report.Prior)
	fmt.Fprintf(&b, "| Neutral probability | %.3f |\n", report.Result.PNeutral)
	if report.Result.PAware != nil {
		fmt.Fprintf(&b, "| Market-aware probability (alpha=%.2f) | %.3f |\n", report.Alpha, *report.Result.PAware)
	}
	if report.Market != nil {
		fmt.Fprintf(&b, "| Market price (%s) | %.3f |\n", report.Market.Source, report.Market.Probability)
	}
	if report.Edge != nil {
		fmt.Fprintf(&b, "| Edge vs market | %+.3f |\n", *report.Edge)
	}
	fmt.Fprintf(&b, "\n")

	if report.Refined {
		fmt.Fprintf(&b, "## Refinement\n\n")
		fmt.Fprintf(&b, "%d of %d evidence items retained after critique.\n\n",
			len(report.FilteredEvidence), report.EvidenceCount)
		if len(report.DroppedIDs) > 0 {
			fmt.Fprintf(&b, "Dropped: %s\n\n", strings.Join(report.DroppedIDs, ", "))
		}
	}

	if top := report.TopInfluence(10); len(top) > 0 {
		fmt.Fprintf(&b, "## Top Influence\n\n")
		fmt.Fprintf(&b, "| Evidence | LLR | Delta pp |\n|---|---|---|\n")
		for _, item := range top {
			fmt.Fprintf(&b, "| %s | %+.3f | %+.4f |\n", item.EvidenceID, item.LogLR, item.DeltaPP)
		}
		fmt.Fprintf(&b, "\n")
	}

	if len(report.Result.Clusters) > 0 {
		fmt.Fprintf(&b, "## Clusters\n\n")
		fmt.Fprintf(&b, "| Cluster | Size | Rho | mEff | Mean LLR | Contribution |\n|---|---|---|---|---|---|\n")
		for _, c := range report.Result.Clusters {
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f | %+.3f | %+.3f |\n",
				c.ClusterID, c.Size, c.Rho, c.MEff, c.MeanLLR, c.Contribution)
		}
		fmt.Fprintf(&b, "\n")
	}

	for _, w := range report.Warnings {
		fmt.Fprintf(&b, "> Warning: %s\n", w)
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\n_Generated by fairline. The neutral estimate never sees the market price._\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a one-screen summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println()
	fmt.Printf("Question:  %s\n", report.Question)
	fmt.Printf("Prior:     %.3f (%s)\n", report.Prior, report.PriorSource)
	fmt.Printf("Neutral:   %.3f\n", report.Result.PNeutral)
	if report.Result.PAware != nil {
		fmt.Printf("Aware:     %.3f (alpha=%.2f)\n", *report.Result.PAware, report.Alpha)
	}
	if report.Edge != nil {
		fmt.Printf("Edge:      %+.3f vs market %.3f\n", *report.Edge, report.Market.Probability)
	}
	fmt.Printf("Evidence:  %d items in %d clusters\n", report.EvidenceCount, len(report.Result.Clusters))
	if report.Refined {
		fmt.Printf("Refined:   %d dropped\n", len(report.DroppedIDs))
	}
	for _, w := range report.Warnings {
		fmt.Printf("Warning:   %s\n", w)
	}
	fmt.Println()
}

package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okulov/fairline/internal/fuse"
	"github.com/okulov/fairline/internal/llm"
	"github.com/okulov/fairline/internal/market"
	"github.com/okulov/fairline/internal/model"
	"github.com/okulov/fairline/internal/refine"
	"github.com/okulov/fairline/internal/score"
)

// Pipeline orchestrates one complete fusion run: load inputs, refine under
// critique, aggregate neutrally, then (and only then) blend the market.
type Pipeline struct {
	fuser    *fuse.Fuser
	refiner  *refine.Refiner
	market   *market.Client // nil when no endpoint configured
	renderer *Renderer
	config   *model.Config
}

// NewPipeline creates a pipeline from configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	scorer := score.NewScorerWith(score.CapsFromConfig(cfg.Scoring), cfg.Scoring.K0)
	fuser := fuse.New(scorer, cfg.Cluster.DefaultRho)

	refiner := refine.NewRefiner(fuser)
	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else if provider != nil {
			if classifier, err := refine.NewLLMClassifier(provider); err == nil {
				refiner = refiner.WithClassifier(classifier)
			}
		}
	}

	return &Pipeline{
		fuser:    fuser,
		refiner:  refiner,
		market:   market.NewClient(cfg.Market),
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		config:   cfg,
	}
}

// FuseRequest describes one fusion run
type FuseRequest struct {
	Question     string
	EvidencePath string
	CritiquePath string   // optional
	Prior        *float64 // optional; overrides the market-derived prior
	Alpha        float64
	Rho          map[string]float64 // optional per-cluster overrides
}

// Run executes the full fusion flow and returns the report.
//
// The prior may come from the market feed, but that happens before any
// aggregation begins; the post-aggregation market consultation is a
// separate, at-most-once callback that only the finalized neutral result
// can trigger.
func (p *Pipeline) Run(ctx context.Context, req FuseRequest) (*model.Report, error) {
	evidence, err := LoadEvidence(req.EvidencePath)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}

	var critique model.Critique
	haveCritique := false
	if req.CritiquePath != "" {
		critique, err = LoadCritique(req.CritiquePath)
		if err != nil {
			return nil, fmt.Errorf("load critique: %w", err)
		}
		haveCritique = true
	}

	prior, priorSource, err := p.resolvePrior(ctx, req.Prior)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Question:      req.Question,
		GeneratedAt:   time.Now().UTC(),
		Prior:         prior,
		PriorSource:   priorSource,
		Alpha:         req.Alpha,
		EvidenceCount: len(evidence),
	}

	var neutral *fuse.NeutralResult
	if haveCritique || p.refinerHasClassifier() {
		res := p.refiner.Refine(ctx, req.Question, prior, evidence, critique, req.Rho)
		neutral = res.Neutral
		report.Refined = true
		report.FilteredEvidence = res.FilteredEvidence
		report.DroppedIDs = res.DroppedIDs
		report.Warnings = res.Warnings
	} else {
		neutral = p.fuser.ComputeNeutral(prior, evidence, req.Rho)
	}

	report.Result = neutral.Result()

	if req.Alpha > 0 && p.market != nil {
		blendCtx, cancel := context.WithTimeout(ctx, p.config.Market.Timeout)
		result, quote, err := neutral.BlendMarket(blendCtx, p.market.MarketFn(), req.Alpha)
		cancel()
		if err != nil {
			// Degrade to the neutral estimate, never abort
			report.Warnings = append(report.Warnings, fmt.Sprintf("market blend skipped: %v", err))
		} else {
			report.Result = result
			report.Market = quote
			if quote != nil {
				edge := report.Result.PNeutral - quote.Probability
				report.Edge = &edge
			}
		}
	}

	return report, nil
}

// resolvePrior picks the aggregation prior: explicit flag, market-derived,
// or the uninformative default
func (p *Pipeline) resolvePrior(ctx context.Context, explicit *float64) (float64, string, error) {
	if explicit != nil {
		if !(*explicit > 0 && *explicit < 1) {
			return 0, "", fmt.Errorf("prior %v outside open interval (0,1)", *explicit)
		}
		return *explicit, "flag", nil
	}

	if p.market != nil {
		prior, err := p.market.Prior(ctx)
		if err == nil {
			return prior, "market", nil
		}
		fmt.Fprintf(os.Stderr, "Warning: market prior unavailable, using default: %v\n", err)
	}

	return 0.5, "default", nil
}

func (p *Pipeline) refinerHasClassifier() bool {
	return p.config.LLM.Provider != ""
}

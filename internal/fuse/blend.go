package fuse

import (
	"context"
	"fmt"
	"math"

	"github.com/okulov/fairline/internal/model"
)

// MarketFn fetches the market-implied probability. It is injected by the
// caller, invoked at most once per aggregation, and only ever after the
// neutral posterior is finalized.
type MarketFn func(ctx context.Context) (*model.MarketQuote, error)

// NeutralResult holds a finalized market-unaware posterior. It can only be
// obtained from ComputeNeutral, which is what makes the market firewall a
// type-level guarantee.
type NeutralResult struct {
	result  model.AggregationResult
	logOdds float64 // logit of the clamped neutral posterior
}

// PNeutral returns the neutral posterior.
func (n *NeutralResult) PNeutral() float64 {
	return n.result.PNeutral
}

// Result returns the aggregation result without market blending. PAware is
// nil. The returned value is a copy; the receiver stays immutable.
func (n *NeutralResult) Result() model.AggregationResult {
	return n.copyResult()
}

// BlendMarket blends the neutral posterior with the market-implied
// probability in log-odds space under trust weight alpha:
//
//	logit(pAware) = (1-alpha)*logit(pNeutral) + alpha*logit(m)
//
// alpha is clamped into [0,1]. At alpha=0 the market is not consulted at
// all and pAware is omitted. A failed fetch degrades to the neutral result
// with pAware omitted; it never aborts the aggregation. The quote actually
// used is returned alongside the result for provenance.
func (n *NeutralResult) BlendMarket(ctx context.Context, fetch MarketFn, alpha float64) (model.AggregationResult, *model.MarketQuote, error) {
	out := n.copyResult()

	alpha = clampAlpha(alpha)
	if alpha == 0 || fetch == nil {
		return out, nil, nil
	}

	quote, err := fetch(ctx)
	if err != nil {
		return out, nil, fmt.Errorf("market fetch: %w", err)
	}
	if quote == nil || math.IsNaN(quote.Probability) || quote.Probability <= 0 || quote.Probability >= 1 {
		return out, nil, fmt.Errorf("market fetch: unusable probability")
	}

	m := clampProb(quote.Probability)
	blended := (1-alpha)*n.logOdds + alpha*logit(m)
	pAware := clampProb(sigmoid(blended))
	out.PAware = &pAware

	return out, quote, nil
}

func (n *NeutralResult) copyResult() model.AggregationResult {
	out := model.AggregationResult{PNeutral: n.result.PNeutral}
	out.Influence = append([]model.InfluenceItem(nil), n.result.Influence...)
	out.Clusters = append([]model.ClusterMeta(nil), n.result.Clusters...)
	return out
}

func clampAlpha(alpha float64) float64 {
	if math.IsNaN(alpha) || alpha < 0 {
		return 0
	}
	if alpha > 1 {
		return 1
	}
	return alpha
}

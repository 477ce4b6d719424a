// Package fuse combines scored, correlation-discounted evidence into a
// calibrated posterior probability.
//
// The API is two-phase on purpose: ComputeNeutral returns a NeutralResult,
// and market blending is only reachable as a method on that value. The
// market price therefore cannot influence the neutral estimate - the
// firewall is enforced by the type system, not by statement order.
package fuse

import (
	"fmt"
	"math"

	"github.com/okulov/fairline/internal/cluster"
	"github.com/okulov/fairline/internal/model"
	"github.com/okulov/fairline/internal/score"
)

// Posteriors are clamped into this open interval before any log-odds
// conversion so downstream blending stays numerically well-defined.
const (
	probFloor = 0.001
	probCeil  = 0.999
)

// Fuser is the neutral aggregation engine. It is a pure function object:
// identical inputs always yield bit-identical outputs, so concurrent
// invocations need no synchronization.
type Fuser struct {
	scorer     *score.Scorer
	defaultRho float64
}

// New creates a fuser around the given scorer and default cluster
// correlation.
func New(scorer *score.Scorer, defaultRho float64) *Fuser {
	if scorer == nil {
		scorer = score.NewScorer()
	}
	return &Fuser{scorer: scorer, defaultRho: defaultRho}
}

// NewDefault creates a fuser with the canonical scorer and the
// conservative default rho.
func NewDefault() *Fuser {
	return New(score.NewScorer(), cluster.DefaultRho)
}

// ComputeNeutral aggregates the prior and all evidence into a
// market-unaware posterior with a per-item influence report.
//
// p0 must lie strictly inside (0,1); anything else is an upstream
// programming error and panics rather than being silently tolerated.
func (f *Fuser) ComputeNeutral(p0 float64, evidence []model.Evidence, rhoOverrides map[string]float64) *NeutralResult {
	if !(p0 > 0 && p0 < 1) || math.IsNaN(p0) {
		panic(fmt.Sprintf("fuse: prior %v outside open interval (0,1)", p0))
	}

	llrs := make(map[string]float64, len(evidence))
	for _, ev := range evidence {
		llrs[ev.ID] = f.scorer.LogLR(ev)
	}

	clusters := cluster.Group(evidence)

	logOdds := logit(p0)
	metas := make([]model.ClusterMeta, 0, len(clusters))
	discountShare := make(map[string]float64, len(evidence))

	for _, c := range clusters {
		rho := cluster.Rho(c.ID, len(c.Members), rhoOverrides, f.defaultRho)
		meta := cluster.Summarize(c, llrs, rho)
		metas = append(metas, meta)
		logOdds += meta.Contribution

		// Each member's discounted share of the total shift; used only
		// for the influence report below
		share := meta.MEff / float64(len(c.Members))
		for _, ev := range c.Members {
			discountShare[ev.ID] = llrs[ev.ID] * share
		}
	}

	pNeutral := clampProb(sigmoid(logOdds))

	// Influence is explanatory: the probability delta from removing just
	// this item's discounted share, computed without touching the
	// canonical posterior. Input order is preserved.
	influence := make([]model.InfluenceItem, 0, len(evidence))
	for _, ev := range evidence {
		share := discountShare[ev.ID]
		without := clampProb(sigmoid(logOdds - share))
		influence = append(influence, model.InfluenceItem{
			EvidenceID: ev.ID,
			LogLR:      llrs[ev.ID],
			DeltaPP:    pNeutral - without,
		})
	}

	return &NeutralResult{
		result: model.AggregationResult{
			PNeutral:  pNeutral,
			Influence: influence,
			Clusters:  metas,
		},
		logOdds: logit(pNeutral),
	}
}

// logit is ln(p/(1-p)), the additive domain where independent evidence
// combines linearly. Callers must clamp p into the open interval first.
func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

func sigmoid(l float64) float64 {
	return 1 / (1 + math.Exp(-l))
}

func clampProb(p float64) float64 {
	if p < probFloor {
		return probFloor
	}
	if p > probCeil {
		return probCeil
	}
	return p
}

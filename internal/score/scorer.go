package score

import (
	"math"

	"github.com/okulov/fairline/internal/model"
)

// Weighting of the three quality components. Verifiability dominates because
// it is directly checkable; independent corroboration matters next; internal
// consistency is a smaller tie-breaker.
const (
	weightVerifiability = 0.5
	weightCorroboration = 0.3
	weightConsistency   = 0.2

	// Single-outlet scoops carry unverified-novelty risk and are halved.
	firstReportPenalty = 0.5
)

// Caps bounds the LLR magnitude per source tier, A highest. The canonical
// scale normalizes a perfect Type-A item to one log-odds unit.
type Caps struct {
	A float64
	B float64
	C float64
	D float64
}

// DefaultCaps returns the canonical tier cap scale.
func DefaultCaps() Caps {
	return Caps{A: 1.00, B: 0.70, C: 0.45, D: 0.25}
}

// CapsFromConfig builds tier caps from configuration.
func CapsFromConfig(cfg model.ScoringConfig) Caps {
	return Caps{A: cfg.CapA, B: cfg.CapB, C: cfg.CapC, D: cfg.CapD}
}

// Scorer converts one evidence record into a signed, bounded log-likelihood
// ratio. It is pure: no state, no randomness, no clock.
type Scorer struct {
	caps Caps
	k0   float64
}

// NewScorer creates a scorer with the canonical caps and k0=1.0.
func NewScorer() *Scorer {
	return &Scorer{caps: DefaultCaps(), k0: 1.0}
}

// NewScorerWith creates a scorer with explicit caps and corroboration rate.
func NewScorerWith(caps Caps, k0 float64) *Scorer {
	if k0 <= 0 {
		k0 = 1.0
	}
	return &Scorer{caps: caps, k0: k0}
}

// Cap returns the LLR magnitude bound for a tier. Unknown tiers get the
// Type-D cap: unclassified sourcing earns the least credit, never an error.
func (s *Scorer) Cap(tier model.SourceTier) float64 {
	switch tier {
	case model.TierA:
		return s.caps.A
	case model.TierB:
		return s.caps.B
	case model.TierC:
		return s.caps.C
	default:
		return s.caps.D
	}
}

// LogLR computes the signed LLR for one evidence item.
//
// Neutral evidence returns exactly 0 so it can never move the posterior.
// A LogLRHint is returned verbatim as an escape hatch for externally
// calibrated values. Otherwise the LLR is the tier cap scaled by a weighted
// quality blend, halved for uncorroborated first reports, and clamped into
// [-cap, cap] after the penalty so the cap holds for every input combination.
func (s *Scorer) LogLR(ev model.Evidence) float64 {
	polarity := normalizePolarity(ev.Polarity)
	if polarity == 0 {
		return 0
	}

	if ev.LogLRHint != nil {
		return *ev.LogLRHint
	}

	cap := s.Cap(ev.Tier)

	verifiability := clamp01(ev.Verifiability)
	consistency := clamp01(ev.Consistency)

	corroborations := ev.CorroborationsIndep
	if corroborations < 0 {
		corroborations = 0
	}
	reliability := 1 - math.Exp(-s.k0*float64(corroborations))

	raw := float64(polarity) * cap * (weightVerifiability*verifiability +
		weightCorroboration*reliability +
		weightConsistency*consistency)

	llr := raw
	if ev.FirstReport {
		llr = raw * firstReportPenalty
	}

	return clamp(llr, -cap, cap)
}

// normalizePolarity repairs out-of-range polarity to its sign
func normalizePolarity(p int) int {
	switch {
	case p > 0:
		return 1
	case p < 0:
		return -1
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

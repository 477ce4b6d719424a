package score

import (
	"math"
	"testing"

	"github.com/okulov/fairline/internal/model"
)

func TestScorer_LogLR_NeutralIsZero(t *testing.T) {
	scorer := NewScorer()

	hint := 0.8
	ev := model.Evidence{
		ID:                  "e1",
		Polarity:            0,
		Tier:                model.TierA,
		Verifiability:       1,
		Consistency:         1,
		CorroborationsIndep: 5,
		LogLRHint:           &hint, // Even a hint must not override neutrality
	}

	if got := scorer.LogLR(ev); got != 0 {
		t.Errorf("Expected 0 for neutral evidence, got %v", got)
	}
}

func TestScorer_LogLR_HintOverride(t *testing.T) {
	scorer := NewScorer()

	hint := -0.42
	ev := model.Evidence{
		ID:            "e1",
		Polarity:      1,
		Tier:          model.TierD,
		Verifiability: 1,
		Consistency:   1,
		LogLRHint:     &hint,
	}

	if got := scorer.LogLR(ev); got != hint {
		t.Errorf("Expected hint %v to be returned verbatim, got %v", hint, got)
	}
}

func TestScorer_LogLR_WorkedExample(t *testing.T) {
	// Type-A pro item: verifiability=1, consistency=1, corroborations=2,
	// not a first report. r = 1 - e^-2, LLR = capA * (0.5 + 0.3*r + 0.2).
	scorer := NewScorer()

	ev := model.Evidence{
		ID:                  "e1",
		Polarity:            1,
		Tier:                model.TierA,
		Verifiability:       1,
		Consistency:         1,
		CorroborationsIndep: 2,
	}

	r := 1 - math.Exp(-2)
	want := 1.0 * (0.5 + 0.3*r + 0.2)

	got := scorer.LogLR(ev)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Expected LLR %v, got %v", want, got)
	}
	if math.Abs(got-0.96) > 0.01 {
		t.Errorf("Expected LLR near 0.96, got %v", got)
	}
}

func TestScorer_LogLR_CapRespect(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name string
		ev   model.Evidence
	}{
		{
			name: "maxed type A",
			ev: model.Evidence{
				Polarity: 1, Tier: model.TierA,
				Verifiability: 1, Consistency: 1, CorroborationsIndep: 100,
			},
		},
		{
			name: "maxed type D negative",
			ev: model.Evidence{
				Polarity: -1, Tier: model.TierD,
				Verifiability: 1, Consistency: 1, CorroborationsIndep: 100,
			},
		},
		{
			name: "out of range quality inputs",
			ev: model.Evidence{
				Polarity: 1, Tier: model.TierB,
				Verifiability: 7, Consistency: 3, CorroborationsIndep: 1000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cap := scorer.Cap(tt.ev.Tier)
			got := scorer.LogLR(tt.ev)
			if math.Abs(got) > cap {
				t.Errorf("|LLR| = %v exceeds tier cap %v", math.Abs(got), cap)
			}
		})
	}
}

func TestScorer_LogLR_TierCapsMonotone(t *testing.T) {
	scorer := NewScorer()

	ev := model.Evidence{
		Polarity: 1, Verifiability: 1, Consistency: 1, CorroborationsIndep: 10,
	}

	var prev float64 = math.Inf(1)
	for _, tier := range []model.SourceTier{model.TierA, model.TierB, model.TierC, model.TierD} {
		ev.Tier = tier
		got := scorer.LogLR(ev)
		if got >= prev {
			t.Errorf("Expected strictly decreasing LLR by tier, got %v after %v at tier %s", got, prev, tier)
		}
		prev = got
	}
}

func TestScorer_LogLR_FirstReportPenalty(t *testing.T) {
	scorer := NewScorer()

	ev := model.Evidence{
		Polarity: 1, Tier: model.TierB,
		Verifiability: 0.8, Consistency: 0.6, CorroborationsIndep: 1,
	}

	full := scorer.LogLR(ev)
	ev.FirstReport = true
	halved := scorer.LogLR(ev)

	if math.Abs(halved-full/2) > 1e-12 {
		t.Errorf("Expected first-report LLR %v to be half of %v", halved, full)
	}
}

func TestScorer_LogLR_DefensiveClamping(t *testing.T) {
	scorer := NewScorer()

	// Negative corroborations and negative quality inputs are repaired,
	// not rejected
	ev := model.Evidence{
		Polarity: 1, Tier: model.TierC,
		Verifiability: -0.5, Consistency: -2, CorroborationsIndep: -3,
	}

	got := scorer.LogLR(ev)
	if got != 0 {
		t.Errorf("Expected 0 LLR for fully repaired-to-zero inputs, got %v", got)
	}

	// Unknown tier falls back to the Type-D cap
	ev = model.Evidence{
		Polarity: 1, Tier: "Z",
		Verifiability: 1, Consistency: 1, CorroborationsIndep: 10,
	}
	if got := scorer.LogLR(ev); math.Abs(got) > scorer.Cap(model.TierD) {
		t.Errorf("Expected unknown tier to be bounded by Type-D cap, got %v", got)
	}
}

package worker

import (
	"context"
	"testing"

	"github.com/okulov/fairline/internal/model"
)

func correlatedEvidence() []model.Evidence {
	// One cluster of three supportive items sharing an origin, so the
	// default-rho hypothesis actually bites
	var out []model.Evidence
	for _, id := range []string{"e1", "e2", "e3"} {
		out = append(out, model.Evidence{
			ID: id, Claim: "same story", Polarity: 1, Tier: model.TierA,
			OriginID: "wire", Verifiability: 1, Consistency: 1, CorroborationsIndep: 2,
		})
	}
	return out
}

func TestSensitivityRunner_PosteriorFallsAsRhoRises(t *testing.T) {
	runner := NewSensitivityRunner(4, model.DefaultConfig().Scoring)

	points := runner.Run(context.Background(), 0.5, correlatedEvidence(), nil)

	if len(points) != 10 {
		t.Fatalf("Expected 10 grid points, got %d", len(points))
	}

	for i, p := range points {
		if p.Error != nil {
			t.Fatalf("Point rho=%v failed: %v", p.Rho, p.Error)
		}
		if i > 0 {
			prev := points[i-1]
			if p.Rho <= prev.Rho {
				t.Errorf("Points not sorted by rho: %v after %v", p.Rho, prev.Rho)
			}
			// Higher assumed correlation discounts the cluster harder
			if p.PNeutral >= prev.PNeutral {
				t.Errorf("Expected pNeutral to fall as rho rises: %v at %v after %v at %v",
					p.PNeutral, p.Rho, prev.PNeutral, prev.Rho)
			}
		}
	}
}

func TestSensitivityRunner_CustomGrid(t *testing.T) {
	runner := NewSensitivityRunner(2, model.DefaultConfig().Scoring)

	points := runner.Run(context.Background(), 0.5, correlatedEvidence(), []float64{0.8, 0.2})

	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[0].Rho != 0.2 || points[1].Rho != 0.8 {
		t.Errorf("Expected sorted grid [0.2 0.8], got [%v %v]", points[0].Rho, points[1].Rho)
	}
}

func TestSensitivityRunner_BadPriorReportedNotFatal(t *testing.T) {
	runner := NewSensitivityRunner(2, model.DefaultConfig().Scoring)

	points := runner.Run(context.Background(), 0, correlatedEvidence(), []float64{0.5})

	if len(points) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(points))
	}
	if points[0].Error == nil {
		t.Error("Expected the contract violation surfaced as a point error")
	}
}

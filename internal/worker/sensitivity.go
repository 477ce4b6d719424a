package worker

import (
	"context"
	"fmt"
	"sort"

	"github.com/okulov/fairline/internal/fuse"
	"github.com/okulov/fairline/internal/model"
	"github.com/okulov/fairline/internal/score"
)

// SensitivityPoint is the neutral posterior under one rho hypothesis.
type SensitivityPoint struct {
	Rho      float64
	PNeutral float64
	Error    error
}

// GetError implements Result
func (p *SensitivityPoint) GetError() error {
	return p.Error
}

// fuseJob aggregates one rho hypothesis. Each job builds its own fuser so
// jobs share nothing.
type fuseJob struct {
	rho      float64
	prior    float64
	evidence []model.Evidence
	caps     score.Caps
	k0       float64
}

// Execute implements Job
func (j *fuseJob) Execute(ctx context.Context) (res Result) {
	point := &SensitivityPoint{Rho: j.rho}
	res = point

	// ComputeNeutral panics on a contract violation; a sensitivity sweep
	// should report it as a failed point, not kill the pool
	defer func() {
		if r := recover(); r != nil {
			point.Error = recoveredError(r)
		}
	}()

	f := fuse.New(score.NewScorerWith(j.caps, j.k0), j.rho)
	point.PNeutral = f.ComputeNeutral(j.prior, j.evidence, nil).PNeutral()
	return point
}

// SensitivityRunner sweeps the default-rho hypothesis over a grid,
// re-aggregating the same evidence under each. Safe to run concurrently
// because the aggregation core is pure.
type SensitivityRunner struct {
	concurrency int
	caps        score.Caps
	k0          float64
}

// NewSensitivityRunner creates a runner with the given pool size
func NewSensitivityRunner(concurrency int, cfg model.ScoringConfig) *SensitivityRunner {
	return &SensitivityRunner{
		concurrency: concurrency,
		caps:        score.CapsFromConfig(cfg),
		k0:          cfg.K0,
	}
}

// Run aggregates the evidence once per rho in grid and returns the points
// sorted by rho. An empty grid gets the default sweep 0.0, 0.1, ... 0.9.
func (r *SensitivityRunner) Run(ctx context.Context, prior float64, evidence []model.Evidence, grid []float64) []*SensitivityPoint {
	if len(grid) == 0 {
		grid = DefaultRhoGrid()
	}

	pool := NewPool(r.concurrency)
	pool.Start()

	for _, rho := range grid {
		pool.Submit(&fuseJob{
			rho:      rho,
			prior:    prior,
			evidence: evidence,
			caps:     r.caps,
			k0:       r.k0,
		})
	}

	results := pool.Wait()

	points := make([]*SensitivityPoint, 0, len(results))
	for _, result := range results {
		points = append(points, result.(*SensitivityPoint))
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Rho < points[j].Rho })

	return points
}

func recoveredError(r interface{}) error {
	return fmt.Errorf("aggregation panic: %v", r)
}

// DefaultRhoGrid returns the standard sweep over valid correlations
func DefaultRhoGrid() []float64 {
	grid := make([]float64, 10)
	for i := range grid {
		grid[i] = float64(i) / 10
	}
	return grid
}

package fuse

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okulov/fairline/internal/model"
)

func quoteFn(p float64, calls *int) MarketFn {
	return func(ctx context.Context) (*model.MarketQuote, error) {
		*calls++
		return &model.MarketQuote{Probability: p, AsOf: time.Now(), Source: "test"}, nil
	}
}

func TestBlendMarket_AlphaZeroOmitsAndSkipsFetch(t *testing.T) {
	f := NewDefault()
	n := f.ComputeNeutral(0.5, []model.Evidence{proEvidence("e1")}, nil)

	calls := 0
	res, quote, err := n.BlendMarket(context.Background(), quoteFn(0.3, &calls), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("alpha=0 must not consult the market, got %d calls", calls)
	}
	if res.PAware != nil || quote != nil {
		t.Error("alpha=0 must omit pAware entirely")
	}
	if res.PNeutral != n.PNeutral() {
		t.Errorf("pNeutral changed during blend: %v vs %v", res.PNeutral, n.PNeutral())
	}
}

func TestBlendMarket_AlphaOneEqualsMarket(t *testing.T) {
	f := NewDefault()
	n := f.ComputeNeutral(0.5, []model.Evidence{proEvidence("e1")}, nil)

	calls := 0
	m := 0.31
	res, quote, err := n.BlendMarket(context.Background(), quoteFn(m, &calls), 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly one market call, got %d", calls)
	}
	if res.PAware == nil {
		t.Fatal("Expected pAware to be set")
	}
	if math.Abs(*res.PAware-m) > 1e-9 {
		t.Errorf("alpha=1 should reproduce the market probability %v, got %v", m, *res.PAware)
	}
	if quote == nil || quote.Probability != m {
		t.Errorf("Expected the used quote to be returned, got %v", quote)
	}
}

func TestBlendMarket_MidAlphaBetween(t *testing.T) {
	f := NewDefault()
	n := f.ComputeNeutral(0.5, []model.Evidence{proEvidence("e1")}, nil)

	calls := 0
	res, _, err := n.BlendMarket(context.Background(), quoteFn(0.30, &calls), 0.25)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.PAware == nil {
		t.Fatal("Expected pAware to be set")
	}
	lo, hi := 0.30, n.PNeutral()
	if *res.PAware <= lo || *res.PAware >= hi {
		t.Errorf("Expected pAware strictly between market %v and neutral %v, got %v", lo, hi, *res.PAware)
	}
}

func TestBlendMarket_FirewallOrdering(t *testing.T) {
	// The market callback is structurally unreachable before pNeutral is
	// finalized: it is a method on NeutralResult. Instrument call order
	// anyway to pin the invariant.
	f := NewDefault()

	var order []string
	fn := func(ctx context.Context) (*model.MarketQuote, error) {
		order = append(order, "market")
		return &model.MarketQuote{Probability: 0.4}, nil
	}

	n := f.ComputeNeutral(0.5, []model.Evidence{proEvidence("e1")}, nil)
	order = append(order, "neutral")

	if _, _, err := n.BlendMarket(context.Background(), fn, 0.1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(order) != 2 || order[0] != "neutral" || order[1] != "market" {
		t.Errorf("Market consulted before neutral estimate finalized: %v", order)
	}
}

func TestBlendMarket_FetchFailureDegrades(t *testing.T) {
	f := NewDefault()
	n := f.ComputeNeutral(0.5, []model.Evidence{proEvidence("e1")}, nil)

	fn := func(ctx context.Context) (*model.MarketQuote, error) {
		return nil, errors.New("feed unavailable")
	}

	res, quote, err := n.BlendMarket(context.Background(), fn, 0.2)
	if err == nil {
		t.Error("Expected a reported fetch error")
	}
	if res.PAware != nil || quote != nil {
		t.Error("Failed fetch must omit pAware, not fabricate one")
	}
	if res.PNeutral != n.PNeutral() {
		t.Errorf("pNeutral must survive a failed fetch: %v vs %v", res.PNeutral, n.PNeutral())
	}
}

func TestBlendMarket_UnusableQuote(t *testing.T) {
	f := NewDefault()
	n := f.ComputeNeutral(0.5, []model.Evidence{proEvidence("e1")}, nil)

	for _, p := range []float64{0, 1, -0.5, 2, math.NaN()} {
		fn := func(ctx context.Context) (*model.MarketQuote, error) {
			return &model.MarketQuote{Probability: p}, nil
		}
		res, _, err := n.BlendMarket(context.Background(), fn, 0.2)
		if err == nil {
			t.Errorf("Expected error for unusable market probability %v", p)
		}
		if res.PAware != nil {
			t.Errorf("Unusable probability %v must not produce pAware", p)
		}
	}
}

func TestBlendMarket_AlphaClamped(t *testing.T) {
	f := NewDefault()
	n := f.ComputeNeutral(0.5, []model.Evidence{proEvidence("e1")}, nil)

	// alpha above 1 clamps to 1: pAware tracks the market exactly
	calls := 0
	res, _, err := n.BlendMarket(context.Background(), quoteFn(0.25, &calls), 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.PAware == nil || math.Abs(*res.PAware-0.25) > 1e-9 {
		t.Errorf("Expected clamped alpha=1 behavior, got %v", res.PAware)
	}

	// Negative alpha clamps to 0: market skipped
	calls = 0
	res, _, err = n.BlendMarket(context.Background(), quoteFn(0.25, &calls), -0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 0 || res.PAware != nil {
		t.Error("Negative alpha must behave as alpha=0")
	}
}

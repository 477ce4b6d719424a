package model

import (
	"math"
	"sort"
	"time"
)

// Report represents the complete fairline fusion report for one question.
type Report struct {
	Question    string    `json:"question"`     // The yes/no question text
	GeneratedAt time.Time `json:"generated_at"` // When fusion ran
	Prior       float64   `json:"prior"`        // p0 used for aggregation
	PriorSource string    `json:"prior_source"` // "flag", "market", or "default"
	Alpha       float64   `json:"alpha"`        // Market trust weight, [0,1]

	EvidenceCount int               `json:"evidence_count"`   // Items seen before refinement
	Result        AggregationResult `json:"result"`           // Posterior + influence breakdown
	Market        *MarketQuote      `json:"market,omitempty"` // Quote used for blending, if any
	Edge          *float64          `json:"edge,omitempty"`   // PNeutral minus market probability

	Refined          bool       `json:"refined"`                     // Whether a critique pass ran
	FilteredEvidence []Evidence `json:"filtered_evidence,omitempty"` // Evidence surviving refinement
	DroppedIDs       []string   `json:"dropped_ids,omitempty"`       // Evidence removed by refinement
	Warnings         []string   `json:"warnings,omitempty"`          // Non-fatal issues (classifier fell open, etc.)
}

// TopInfluence returns up to n influence items ordered by absolute
// probability-point contribution, largest first. Ties break on evidence id
// so the ordering is stable.
func (r *Report) TopInfluence(n int) []InfluenceItem {
	items := make([]InfluenceItem, len(r.Result.Influence))
	copy(items, r.Result.Influence)

	sort.Slice(items, func(i, j int) bool {
		ai, aj := math.Abs(items[i].DeltaPP), math.Abs(items[j].DeltaPP)
		if ai != aj {
			return ai > aj
		}
		return items[i].EvidenceID < items[j].EvidenceID
	})

	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

package model

import "time"

// ClusterMeta describes one story cluster as seen by a single aggregation
// call. It is computed transiently per call and never persisted independently.
type ClusterMeta struct {
	ClusterID    string   `json:"cluster_id"`           // Grouping key (explicit tag, origin, or claim signature)
	Size         int      `json:"size"`                 // Member count
	Rho          float64  `json:"rho"`                  // Assumed intra-cluster correlation, [0,1)
	MEff         float64  `json:"m_eff"`                // Effective independent count, <= Size
	MeanLLR      float64  `json:"mean_llr"`             // Mean of member LLRs
	Contribution float64  `json:"contribution"`         // Discounted log-odds shift: MeanLLR * MEff
	MemberIDs    []string `json:"member_ids,omitempty"` // Evidence ids, input order
}

// InfluenceItem reports how much one evidence item moved the posterior.
// It exists for explanation only; the posterior is never re-derived from it.
type InfluenceItem struct {
	EvidenceID string  `json:"evidence_id"`
	LogLR      float64 `json:"log_lr"`   // The item's own signed LLR
	DeltaPP    float64 `json:"delta_pp"` // Approximate probability-point contribution
}

// AggregationResult is the output of one fusion pass. Immutable once
// produced; a fresh call produces a fresh result.
type AggregationResult struct {
	PNeutral  float64         `json:"p_neutral"`         // Market-unaware posterior, open (0,1)
	PAware    *float64        `json:"p_aware,omitempty"` // Market-blended posterior; nil when blending is off or failed
	Influence []InfluenceItem `json:"influence"`
	Clusters  []ClusterMeta   `json:"clusters"`
}

// MarketQuote is a market-implied probability snapshot from an external
// price feed.
type MarketQuote struct {
	Probability float64   `json:"probability"`
	AsOf        time.Time `json:"as_of,omitempty"`
	Source      string    `json:"source,omitempty"`
}

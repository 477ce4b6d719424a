package model

import "time"

// Evidence represents one quality-scored evidentiary claim about the question.
// Evidence is produced by external research components and is read-only here:
// the engine never mutates an Evidence record after ingestion.
type Evidence struct {
	ID                  string     `json:"id"`                            // Unique identifier
	Claim               string     `json:"claim"`                         // The claim text itself
	Polarity            int        `json:"polarity"`                      // +1 supports YES, -1 supports NO, 0 neutral
	Tier                SourceTier `json:"tier"`                          // Source-quality tier (A highest)
	URLs                []string   `json:"urls,omitempty"`                // Source links (order irrelevant)
	OriginID            string     `json:"origin_id,omitempty"`           // Source-family key for dedup/clustering
	ClusterID           string     `json:"cluster_id,omitempty"`          // Explicit cluster tag (overrides origin)
	FirstReport         bool       `json:"first_report"`                  // Single-outlet scoop, not yet corroborated
	Verifiability       float64    `json:"verifiability"`                 // [0,1] how directly checkable the claim is
	CorroborationsIndep int        `json:"corroborations_indep"`          // Count of independent corroborating sources
	Consistency         float64    `json:"consistency"`                   // [0,1] internal logical consistency
	LogLRHint           *float64   `json:"log_lr_hint,omitempty"`         // Pre-computed LLR override (used verbatim)
	PublishedAt         *time.Time `json:"published_at,omitempty"`        // Publication timestamp, if known
	Pathway             string     `json:"pathway,omitempty"`             // Causal-pathway tag (informational only)
	ConnectionStrength  string     `json:"connection_strength,omitempty"` // Pathway strength tag (informational only)
}

// SourceTier classifies source quality, A highest.
type SourceTier string

const (
	TierA SourceTier = "A" // Primary documents, filings, official data
	TierB SourceTier = "B" // Major wire services, reputable press
	TierC SourceTier = "C" // Regional press, trade publications
	TierD SourceTier = "D" // Blogs, social media, anonymous sourcing
)

// Valid reports whether the tier is one of the four known tiers.
func (t SourceTier) Valid() bool {
	switch t {
	case TierA, TierB, TierC, TierD:
		return true
	}
	return false
}

// Critique is external critic feedback used by the refiner to filter and
// re-weight evidence before a second aggregation pass.
type Critique struct {
	DuplicationFlags       []string           `json:"duplication_flags,omitempty"`       // id/origin substrings marking duplicates
	CorrelationAdjustments map[string]float64 `json:"correlation_adjustments,omitempty"` // clusterId -> rho override
	DataConcerns           []string           `json:"data_concerns,omitempty"`           // claim/origin substrings marking bad data
}

// Empty reports whether the critique carries no actionable feedback.
func (c Critique) Empty() bool {
	return len(c.DuplicationFlags) == 0 && len(c.CorrelationAdjustments) == 0 && len(c.DataConcerns) == 0
}

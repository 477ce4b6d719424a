package cluster

import (
	"math"
	"sort"
	"strings"

	"github.com/okulov/fairline/internal/model"
)

// DefaultRho is the conservative correlation assumed for multi-member
// clusters when no override is supplied. Assuming independence (rho=0) for
// same-origin items systematically overstates confidence, so the unknown
// case sits in the middle.
const DefaultRho = 0.5

// Cluster is one group of evidence sharing a source/claim signature.
type Cluster struct {
	ID      string
	Members []model.Evidence // Input order preserved
}

// Group partitions evidence into clusters. The grouping key is, in
// precedence order: the explicit cluster tag, the origin id, or a
// normalized claim signature. Clusters are returned sorted by id so the
// output is deterministic regardless of input order.
func Group(evidence []model.Evidence) []Cluster {
	byKey := make(map[string]*Cluster)
	var keys []string

	for _, ev := range evidence {
		k := Key(ev)
		c, ok := byKey[k]
		if !ok {
			c = &Cluster{ID: k}
			byKey[k] = c
			keys = append(keys, k)
		}
		c.Members = append(c.Members, ev)
	}

	sort.Strings(keys)

	clusters := make([]Cluster, 0, len(keys))
	for _, k := range keys {
		clusters = append(clusters, *byKey[k])
	}
	return clusters
}

// Key returns the grouping key for one evidence item.
func Key(ev model.Evidence) string {
	if ev.ClusterID != "" {
		return ev.ClusterID
	}
	if ev.OriginID != "" {
		return ev.OriginID
	}
	return "claim:" + normalizeClaim(ev.Claim)
}

// Rho resolves the correlation for a cluster. Singletons are 0 by
// definition. Overrides apply only when finite and inside [0,1); anything
// malformed falls back to the default rather than erroring.
func Rho(clusterID string, size int, overrides map[string]float64, fallback float64) float64 {
	if size <= 1 {
		return 0
	}
	if rho, ok := overrides[clusterID]; ok && validRho(rho) {
		return rho
	}
	if validRho(fallback) {
		return fallback
	}
	return DefaultRho
}

// MEff is the effective independent sample size of a correlated cluster:
// 1 + (n-1)(1-rho). As rho approaches 1 the cluster counts as a single
// source no matter how many outlets repeat it; at rho=0 every member earns
// full credit.
func MEff(size int, rho float64) float64 {
	if size <= 0 {
		return 0
	}
	return 1 + float64(size-1)*(1-rho)
}

// Summarize computes the redundancy-discounted metadata for one cluster.
// llrs maps evidence id to its scored LLR. The cluster's log-odds
// contribution is meanLLR * mEff, never the naive member sum: one
// syndicated story repeated by many outlets must not count as many
// independent confirmations.
func Summarize(c Cluster, llrs map[string]float64, rho float64) model.ClusterMeta {
	n := len(c.Members)

	var sum float64
	memberIDs := make([]string, 0, n)
	for _, ev := range c.Members {
		sum += llrs[ev.ID]
		memberIDs = append(memberIDs, ev.ID)
	}

	var mean float64
	if n > 0 {
		mean = sum / float64(n)
	}

	mEff := MEff(n, rho)

	return model.ClusterMeta{
		ClusterID:    c.ID,
		Size:         n,
		Rho:          rho,
		MEff:         mEff,
		MeanLLR:      mean,
		Contribution: mean * mEff,
		MemberIDs:    memberIDs,
	}
}

func validRho(rho float64) bool {
	return !math.IsNaN(rho) && rho >= 0 && rho < 1
}

// normalizeClaim lowercases and collapses whitespace so trivially restated
// duplicates land in the same cluster
func normalizeClaim(claim string) string {
	return strings.Join(strings.Fields(strings.ToLower(claim)), " ")
}

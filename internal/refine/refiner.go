// Package refine applies external critique feedback to an evidence set and
// re-runs the neutral aggregation on what survives.
package refine

import (
	"context"
	"fmt"
	"strings"

	"github.com/okulov/fairline/internal/fuse"
	"github.com/okulov/fairline/internal/model"
)

// RelevanceClassifier narrows evidence to items on-topic for the question.
// It is external and fallible; the refiner fails open on any error.
type RelevanceClassifier interface {
	// Relevant returns the ids of evidence items judged on-topic.
	Relevant(ctx context.Context, question string, evidence []model.Evidence) ([]string, error)
}

// Refiner filters and re-weights evidence from critique feedback. The
// textual filter is deterministic and conservative, not a probabilistic
// classifier.
type Refiner struct {
	fuser      *fuse.Fuser
	classifier RelevanceClassifier // optional
}

// NewRefiner creates a refiner around the given fuser.
func NewRefiner(fuser *fuse.Fuser) *Refiner {
	return &Refiner{fuser: fuser}
}

// WithClassifier attaches an optional topic-relevance classifier.
func (r *Refiner) WithClassifier(c RelevanceClassifier) *Refiner {
	r.classifier = c
	return r
}

// Result is the outcome of one critique-driven pass. Neutral feeds the
// market blender exactly like a first-pass result; the filtered evidence
// list is kept for provenance by downstream reporting.
type Result struct {
	Neutral          *fuse.NeutralResult
	FilteredEvidence []model.Evidence
	DroppedIDs       []string
	Rho              map[string]float64 // Merged rho map actually used
	Warnings         []string           // e.g. classifier fell open
}

// Refine drops evidence named by the critique, merges the critique's rho
// overrides (last-write-wins) into the base map, optionally narrows to
// on-topic items, and re-runs the neutral aggregator. The input evidence
// list is never modified; filtering produces a new list.
func (r *Refiner) Refine(ctx context.Context, question string, p0 float64, evidence []model.Evidence, critique model.Critique, baseRho map[string]float64) *Result {
	kept, dropped := applyCritiqueFilter(evidence, critique)

	var warnings []string
	if r.classifier != nil && question != "" {
		var warn string
		kept, warn = r.narrowRelevant(ctx, question, kept)
		if warn != "" {
			warnings = append(warnings, warn)
		}
	}

	merged := mergeRho(baseRho, critique.CorrelationAdjustments)

	return &Result{
		Neutral:          r.fuser.ComputeNeutral(p0, kept, merged),
		FilteredEvidence: kept,
		DroppedIDs:       dropped,
		Rho:              merged,
		Warnings:         warnings,
	}
}

// applyCritiqueFilter drops evidence whose id or origin contains a
// duplication flag, or whose claim or origin contains a data-concern
// keyword, case-insensitively. Empty critique strings are ignored: an
// empty substring matches everything and would wipe the set.
func applyCritiqueFilter(evidence []model.Evidence, critique model.Critique) (kept []model.Evidence, dropped []string) {
	kept = make([]model.Evidence, 0, len(evidence))

	for _, ev := range evidence {
		if matchesAny(critique.DuplicationFlags, ev.ID, ev.OriginID) ||
			matchesAny(critique.DataConcerns, ev.Claim, ev.OriginID) {
			dropped = append(dropped, ev.ID)
			continue
		}
		kept = append(kept, ev)
	}
	return kept, dropped
}

// narrowRelevant asks the classifier which items are on-topic. Any failure
// mode - transport error, empty verdict, ids matching nothing we hold -
// keeps the full set. Silently zeroing the evidence would collapse the
// estimate to the bare prior, a worse failure than retaining an off-topic
// item.
func (r *Refiner) narrowRelevant(ctx context.Context, question string, evidence []model.Evidence) ([]model.Evidence, string) {
	ids, err := r.classifier.Relevant(ctx, question, evidence)
	if err != nil {
		return evidence, fmt.Sprintf("relevance classifier failed, keeping all evidence: %v", err)
	}

	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	narrowed := make([]model.Evidence, 0, len(evidence))
	for _, ev := range evidence {
		if keep[ev.ID] {
			narrowed = append(narrowed, ev)
		}
	}

	if len(narrowed) == 0 {
		return evidence, "relevance classifier matched no evidence, keeping all"
	}
	return narrowed, ""
}

// mergeRho overlays adjustments onto base by override, never averaging.
// Neither input map is modified.
func mergeRho(base, adjustments map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(base)+len(adjustments))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range adjustments {
		merged[k] = v
	}
	return merged
}

func matchesAny(needles []string, haystacks ...string) bool {
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		n := strings.ToLower(needle)
		for _, hay := range haystacks {
			if hay != "" && strings.Contains(strings.ToLower(hay), n) {
				return true
			}
		}
	}
	return false
}

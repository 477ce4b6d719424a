package refine

import (
	"context"
	"fmt"

	"github.com/okulov/fairline/internal/llm"
	"github.com/okulov/fairline/internal/model"
)

// LLMClassifier adapts an llm.Provider to the RelevanceClassifier
// interface. The provider only sees ids and claim text, never scores.
type LLMClassifier struct {
	provider llm.Provider
}

// NewLLMClassifier wraps a provider; nil providers are rejected so a
// misconfigured classifier is caught at wiring time, not mid-refinement.
func NewLLMClassifier(provider llm.Provider) (*LLMClassifier, error) {
	if provider == nil {
		return nil, fmt.Errorf("llm classifier: provider is nil")
	}
	return &LLMClassifier{provider: provider}, nil
}

// Relevant implements RelevanceClassifier.
func (c *LLMClassifier) Relevant(ctx context.Context, question string, evidence []model.Evidence) ([]string, error) {
	items := make([]llm.ClassifyItem, 0, len(evidence))
	for _, ev := range evidence {
		items = append(items, llm.ClassifyItem{ID: ev.ID, Claim: ev.Claim})
	}

	resp, err := c.provider.Classify(ctx, llm.ClassifyRequest{
		Question: question,
		Items:    items,
	})
	if err != nil {
		return nil, err
	}
	return resp.RelevantIDs, nil
}

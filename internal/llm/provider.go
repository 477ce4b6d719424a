package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers backing the optional
// relevance classifier. Providers never see or influence scoring; they only
// answer which evidence items are on-topic.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Classify returns the ids of evidence items relevant to the question
	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the input for relevance classification
type ClassifyRequest struct {
	// Question is the yes/no prediction-market question text
	Question string

	// Items are the candidate evidence claims, id plus claim text only
	Items []ClassifyItem

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ClassifyItem is one candidate claim shown to the model
type ClassifyItem struct {
	ID    string
	Claim string
}

// ClassifyResponse contains the classifier verdict
type ClassifyResponse struct {
	// RelevantIDs are the ids the model judged on-topic, filtered to ids
	// that actually exist in the request
	RelevantIDs []string

	// Model is the model that produced the verdict
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 500,
	}
}

// BuildPrompt constructs the relevance-classification prompt. The model is
// asked for a bare JSON array of ids so the answer parses deterministically.
func BuildPrompt(question string, items []ClassifyItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are filtering evidence for the prediction-market question:

%q

For each item below, decide whether the claim is directly relevant to resolving this question. Respond with ONLY a JSON array of the relevant item ids, e.g. ["e1","e4"]. Do not explain. If unsure about an item, include it.

Items:
`, question)

	for _, item := range items {
		fmt.Fprintf(&b, "- id=%s claim=%q\n", item.ID, item.Claim)
	}

	return b.String()
}

// ParseIDs extracts evidence ids from a model answer, tolerating prose
// around the JSON array, and filters them to known ids. An answer that
// yields nothing returns an empty slice; the caller decides to fail open.
func ParseIDs(answer string, known map[string]bool) []string {
	var ids []string

	start := strings.Index(answer, "[")
	end := strings.LastIndex(answer, "]")
	if start >= 0 && end > start {
		_ = json.Unmarshal([]byte(answer[start:end+1]), &ids)
	}

	// Fallback: some local models answer with one id per line
	if len(ids) == 0 {
		for _, line := range strings.Split(answer, "\n") {
			ids = append(ids, strings.Trim(strings.TrimSpace(line), `",`))
		}
	}

	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if known[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

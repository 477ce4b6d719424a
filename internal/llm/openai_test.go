package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProvider_Classify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "[\"e1\",\"e3\"]"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 10, "total_tokens": 50}
		}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Classify(context.Background(), ClassifyRequest{
		Question: "Will the merger close this year?",
		Items:    classifyItems(),
	})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if len(resp.RelevantIDs) != 2 || resp.RelevantIDs[0] != "e1" || resp.RelevantIDs[1] != "e3" {
		t.Errorf("Unexpected relevant ids: %v", resp.RelevantIDs)
	}
	if resp.TokensUsed != 50 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected an error without an API key")
	}
}

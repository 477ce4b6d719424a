package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okulov/fairline/internal/model"
)

func testConfig(endpoint string) model.MarketConfig {
	return model.MarketConfig{
		Endpoint:       endpoint,
		Timeout:        2 * time.Second,
		CacheTTL:       time.Minute,
		RequestsPerSec: 100,
		Burst:          10,
		PriorFloor:     0.10,
		PriorCeil:      0.90,
	}
}

func TestClient_Quote_ParsesPriceField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"price": 0.37, "source": "clob"}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	quote, err := c.Quote(context.Background())
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	if quote.Probability != 0.37 {
		t.Errorf("Expected probability 0.37, got %v", quote.Probability)
	}
	if quote.Source != "clob" {
		t.Errorf("Expected source clob, got %s", quote.Source)
	}
	if quote.AsOf.IsZero() {
		t.Error("Expected AsOf to be stamped when the feed omits it")
	}
}

func TestClient_Quote_ParsesProbabilityField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"probability": 0.62, "as_of": "2026-08-29T12:00:00Z"}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	quote, err := c.Quote(context.Background())
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	if quote.Probability != 0.62 {
		t.Errorf("Expected probability 0.62, got %v", quote.Probability)
	}
	if quote.AsOf.Format(time.RFC3339) != "2026-08-29T12:00:00Z" {
		t.Errorf("Expected feed timestamp preserved, got %v", quote.AsOf)
	}
}

func TestClient_Quote_CachesWithinTTL(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		_, _ = w.Write([]byte(`{"price": 0.5}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	for i := 0; i < 5; i++ {
		if _, err := c.Quote(context.Background()); err != nil {
			t.Fatalf("Quote %d failed: %v", i, err)
		}
	}

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("Expected 1 upstream hit with warm cache, got %d", got)
	}
}

func TestClient_Quote_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
		{"missing fields", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"source": "clob"}`))
		}},
		{"probability out of range", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"price": 1.5}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(testConfig(server.URL))
			if _, err := c.Quote(context.Background()); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestClient_Prior_Clamps(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  float64
	}{
		{"inside band", `{"price": 0.42}`, 0.42},
		{"below floor", `{"price": 0.02}`, 0.10},
		{"above ceiling", `{"price": 0.98}`, 0.90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.price))
			}))
			defer server.Close()

			c := NewClient(testConfig(server.URL))
			got, err := c.Prior(context.Background())
			if err != nil {
				t.Fatalf("Prior failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Prior = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewClient_NoEndpointDisables(t *testing.T) {
	if c := NewClient(model.MarketConfig{}); c != nil {
		t.Error("Expected nil client when no endpoint configured")
	}
}

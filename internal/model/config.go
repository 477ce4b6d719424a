package model

import "time"

// Config holds all fairline configuration
type Config struct {
	Scoring     ScoringConfig     `yaml:"scoring"`
	Cluster     ClusterConfig     `yaml:"cluster"`
	Blend       BlendConfig       `yaml:"blend"`
	Market      MarketConfig      `yaml:"market"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// ScoringConfig controls per-item LLR scoring
type ScoringConfig struct {
	CapA float64 `yaml:"cap_a"` // Type-A cap (highest)
	CapB float64 `yaml:"cap_b"`
	CapC float64 `yaml:"cap_c"`
	CapD float64 `yaml:"cap_d"` // Type-D cap (lowest)
	K0   float64 `yaml:"k0"`    // Corroboration saturation rate
}

// ClusterConfig controls correlation discounting
type ClusterConfig struct {
	DefaultRho float64 `yaml:"default_rho"` // Assumed rho for multi-member clusters when unknown
}

// BlendConfig controls market-aware blending
type BlendConfig struct {
	Alpha float64 `yaml:"alpha"` // Market trust weight, [0,1]; 0 disables blending
}

// MarketConfig controls the market price feed client
type MarketConfig struct {
	Endpoint       string        `yaml:"endpoint"`         // Price endpoint URL; empty disables the feed
	Timeout        time.Duration `yaml:"timeout"`          // Per-request timeout
	CacheTTL       time.Duration `yaml:"cache_ttl"`        // Quote cache lifetime
	RequestsPerSec float64       `yaml:"requests_per_sec"` // Rate limit toward the feed host
	Burst          int           `yaml:"burst"`
	PriorFloor     float64       `yaml:"prior_floor"` // Market-derived prior clamp, lower bound
	PriorCeil      float64       `yaml:"prior_ceil"`  // Market-derived prior clamp, upper bound
}

// LLMConfig holds configuration for the optional relevance classifier
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, ollama, or "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// ConcurrencyConfig controls worker pool sizing
type ConcurrencyConfig struct {
	FuseWorkers int `yaml:"fuse_workers"` // Batch/sensitivity pool size
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			CapA: 1.00,
			CapB: 0.70,
			CapC: 0.45,
			CapD: 0.25,
			K0:   1.0,
		},
		Cluster: ClusterConfig{
			DefaultRho: 0.5,
		},
		Blend: BlendConfig{
			Alpha: 0.1,
		},
		Market: MarketConfig{
			Timeout:        10 * time.Second,
			CacheTTL:       30 * time.Second,
			RequestsPerSec: 2,
			Burst:          2,
			PriorFloor:     0.10,
			PriorCeil:      0.90,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 500,
		},
		Concurrency: ConcurrencyConfig{
			FuseWorkers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Package llm wraps the Gemini API and adapts it to the resume enhancer's AI backend.
package llm

import (
	"maps"
	"time"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for cheap, short answers
	TierLite ModelTier = "lite"
	// TierStandard is for structured output such as enhancement reports
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long resumes that need more careful rewriting
	TierAdvanced ModelTier = "advanced"
)

// fallbackTiers is tried in order when a tier has no model.
var fallbackTiers = []ModelTier{TierStandard, TierLite}

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one wired in.
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for the AI backend
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// MaxOutputTokens caps a reply; 0 leaves the model default.
	MaxOutputTokens int32
	// Timeout bounds a single generation; 0 means only the caller's context applies.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration. A report with
// twelve rewrites fits comfortably in 4096 tokens.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     0.2,
		MaxOutputTokens: 4096,
		Timeout:         60 * time.Second,
	}
}

// GetModel returns the model for tier, falling back to standard and then lite.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	for _, t := range fallbackTiers {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with model set for tier. An empty model changes nothing.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	clone := *c
	clone.Models = maps.Clone(c.Models)
	if clone.Models == nil {
		clone.Models = make(map[ModelTier]string)
	}
	if model != "" {
		clone.Models[tier] = model
	}
	return &clone
}

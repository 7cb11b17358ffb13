package config

import "os"

// AI backends selectable through AI_BACKEND.
const (
	AIBackendNone   = ""
	AIBackendGemini = "gemini"
)

// EnhancerConfig selects how the resume enhancer's AI path behaves.
type EnhancerConfig struct {
	// AICredentialPresent is true when OPENAI_API_KEY or GEMINI_API_KEY is set.
	AICredentialPresent bool
	// Backend names the AI implementation to attach; empty leaves the AI path as a hook.
	Backend      string
	GeminiAPIKey string
	GeminiModel  string
}

// NewEnhancerConfig reads OPENAI_API_KEY, AI_BACKEND, GEMINI_API_KEY and GEMINI_MODEL.
func NewEnhancerConfig() EnhancerConfig {
	return EnhancerConfig{
		AICredentialPresent: os.Getenv("OPENAI_API_KEY") != "" || os.Getenv("GEMINI_API_KEY") != "",
		Backend:             os.Getenv("AI_BACKEND"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         os.Getenv("GEMINI_MODEL"),
	}
}

// GeminiEnabled reports whether a Gemini backend should be attached.
func (c EnhancerConfig) GeminiEnabled() bool {
	return c.Backend == AIBackendGemini && c.GeminiAPIKey != ""
}

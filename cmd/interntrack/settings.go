package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/interntrack/internal/config"
	"github.com/jonathan/interntrack/internal/enhancer"
	"github.com/jonathan/interntrack/internal/llm"
)

// loadSettings resolves the configuration. Environment variables win over the
// config file, which wins over the built-in defaults.
func loadSettings(path string) (config.Config, error) {
	cfg := config.FromEnv()

	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildEnhancer wires the AI backend selected by the environment. The returned
// cleanup releases the backend's client and is never nil.
func buildEnhancer(ctx context.Context, logger *slog.Logger) (enhancer.Enhancer, func(), error) {
	ecfg := config.NewEnhancerConfig()
	e := enhancer.Enhancer{
		AICredentialPresent: ecfg.AICredentialPresent,
		Logger:              logger,
	}
	noop := func() {}

	switch {
	case ecfg.GeminiEnabled():
	case ecfg.Backend == config.AIBackendNone:
		return e, noop, nil
	case ecfg.Backend == config.AIBackendGemini:
		logger.Warn("AI_BACKEND=gemini but GEMINI_API_KEY is not set; AI requests will use the hook response")
		return e, noop, nil
	default:
		return e, noop, fmt.Errorf("unknown AI_BACKEND %q", ecfg.Backend)
	}

	llmCfg := llm.DefaultConfig().WithModel(llm.TierStandard, ecfg.GeminiModel)
	client, err := llm.NewGeminiClient(ctx, llmCfg, ecfg.GeminiAPIKey)
	if err != nil {
		return e, noop, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	e.Backend = llm.NewReportBackend(client)
	logger.Info("AI backend enabled", "backend", config.AIBackendGemini, "model", client.Model(llm.TierStandard))

	return e, func() { _ = client.Close() }, nil
}

package main

import (
	"log/slog"
	"time"

	"github.com/teslashibe/go-chakraflow/internal/config"
	"github.com/teslashibe/go-chakraflow/pkg/narration"
	"github.com/teslashibe/go-chakraflow/pkg/textgen"
)

// buildProvider assembles the text-generation chain: Gemini first, then any
// OpenAI-compatible server. It returns nil when nothing is configured.
func buildProvider(cfg config.ProvidersConfig, timeout time.Duration, logger *slog.Logger) (textgen.Provider, error) {
	var providers []textgen.Provider

	if cfg.GeminiAPIKey != "" || cfg.GeminiADC {
		g, err := textgen.NewGemini(
			textgen.WithAPIKey(cfg.GeminiAPIKey),
			textgen.WithModel(cfg.GeminiModel),
			textgen.WithTimeout(timeout),
			textgen.WithLogger(logger),
		)
		if err != nil {
			// Narration can still use OpenAI or the fallback text.
			logger.Warn("gemini unavailable", "error", err)
		} else {
			providers = append(providers, g)
		}
	}

	if cfg.OpenAIAPIKey != "" {
		c, err := textgen.NewClient(
			textgen.WithBaseURL(cfg.OpenAIBaseURL),
			textgen.WithAPIKey(cfg.OpenAIAPIKey),
			textgen.WithModel(cfg.OpenAIModel),
			textgen.WithTimeout(timeout),
			textgen.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, c)
	}

	switch len(providers) {
	case 0:
		return nil, nil
	case 1:
		return providers[0], nil
	}
	chain, err := textgen.NewChainWithLogger(logger, providers...)
	if err != nil {
		return nil, err
	}
	return chain, nil
}

// buildCollaborator wraps the provider chain for narration. A nil result
// means narration always uses the fallback text.
func buildCollaborator(cfg config.ProvidersConfig, timeout time.Duration, logger *slog.Logger) (narration.Collaborator, func() error, error) {
	p, err := buildProvider(cfg, timeout, logger)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		logger.Info("no text provider configured, narration uses fallback text")
		return nil, func() error { return nil }, nil
	}
	logger.Info("narration provider ready", "provider", p.Name())
	return narration.NewExplainer(p, timeout, logger), p.Close, nil
}

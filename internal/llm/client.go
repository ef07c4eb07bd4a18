package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// GenerateOptions controls a single generation call
type GenerateOptions struct {
	Tier ModelTier
	// Search enables web search grounding when the provider supports it.
	Search bool
	// ThinkingBudget caps reasoning tokens. Zero leaves the provider default;
	// negative asks the provider to size the budget dynamically.
	ThinkingBudget int32
	// Temperature of zero leaves the provider default.
	Temperature float32
}

// Client is an abstraction over LLM providers
type Client interface {
	// Generate sends a single text prompt and returns the text of the first candidate.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// GetModel returns the provider model name used for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// Factory creates a Client for an API key. The audit service builds one client
// per generation because the key may come from a per-session override.
type Factory func(ctx context.Context, apiKey string) (Client, error)

// NewFactory returns a Factory bound to config and logger.
func NewFactory(config *Config, logger *zap.Logger) Factory {
	return func(ctx context.Context, apiKey string) (Client, error) {
		return NewClient(ctx, config, apiKey, logger)
	}
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string, logger *zap.Logger) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey, logger)
	case ProviderGenAI, "":
		return NewGenAIClient(ctx, config, apiKey, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

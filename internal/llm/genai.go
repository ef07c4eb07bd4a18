package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenAIClient implements Client on the google.golang.org/genai SDK
type GenAIClient struct {
	client *genai.Client
	config *Config
	logger *zap.Logger
}

// NewGenAIClient creates a new GenAI client for the Gemini API backend
func NewGenAIClient(ctx context.Context, config *Config, apiKey string, logger *zap.Logger) (*GenAIClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Generate sends prompt with optional search grounding and thinking budget
func (c *GenAIClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	modelName := c.config.GetModel(opts.Tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", opts.Tier)
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), buildGenerateConfig(opts))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("generation finished",
		zap.String("model", modelName),
		zap.Bool("search", opts.Search),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

// buildGenerateConfig maps GenerateOptions onto the SDK request config.
func buildGenerateConfig(opts GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if opts.ThinkingBudget != 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(opts.ThinkingBudget),
		}
	}
	return cfg
}

// GetModel returns the model name for a tier
func (c *GenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the GenAI client holds no closable resources.
func (c *GenAIClient) Close() error {
	return nil
}

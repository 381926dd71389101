// Package ai forwards text to an external generative-text service and
// shapes the prompts used for answer enhancement, suggestions and sentiment.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotConfigured is returned when no provider credentials are set.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrProvider wraps failures reported by the remote service.
	ErrProvider = errors.New("ai provider error")
)

// Provider performs a single system+user completion round trip.
type Provider interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
	Name() string
}

// Config selects and configures the provider.
type Config struct {
	Provider         string
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	Timeout          time.Duration
}

// NewProvider builds the provider named in cfg. A missing key yields a
// disabled provider instead of an error so the server can still start.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return Disabled{}, nil
		}
		return NewAnthropicClient(AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			BaseURL: cfg.AnthropicBaseURL,
			Model:   cfg.AnthropicModel,
			Timeout: cfg.Timeout,
		}), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return Disabled{}, nil
		}
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.Timeout,
		})
	}
	return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
}

// Disabled is the provider used when no API key is configured.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string, int) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Name() string { return "disabled" }

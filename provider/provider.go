package provider

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/tradeops/config"
	openai_provider "github.com/mohammad-safakhou/tradeops/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// ErrNoAPIKey is returned when the selected provider has no API key
// configured; callers are expected to run without a provider in that case.
var ErrNoAPIKey = errors.New("llm api key not set")

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, ErrNoAPIKey
		}
		return openai_provider.NewOpenAIClient(
			cfg.APIKey,
			cfg.Model,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}

package provider

import (
	"context"
	"errors"

	"github.com/mbenkhaled/telerag/config"
	openai_provider "github.com/mbenkhaled/telerag/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAICompatible Client = "openai"
)

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	// ChatCompletion sends a single user-role message and returns the model output.
	// Temperature and maxTokens are caller-supplied per call.
	ChatCompletion(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
	// CreateEmbedding turns texts into L2-normalized fixed-length vectors.
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(client Client, cfg config.LLMConfig) (Provider, error) {
	switch client {
	case OpenAICompatible:
		if cfg.APIKey == "" {
			return nil, errors.New("llm api key not configured")
		}
		return openai_provider.NewClient(cfg), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}

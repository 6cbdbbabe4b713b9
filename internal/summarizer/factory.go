package summarizer

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by NewFromEnv
const (
	EnvProvider     = "REPODOC_PROVIDER"
	EnvEndpoint     = "REPODOC_ENDPOINT"
	EnvModel        = "REPODOC_MODEL"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// Config holds provider configuration
type Config struct {
	Provider string
	Endpoint string // Ollama base URL
	Model    string
	APIKey   string // Gemini API key
}

// NewFromEnv creates a provider based on environment variables.
// Priority:
// 1. REPODOC_PROVIDER (ollama, gemini, local)
// 2. GEMINI_API_KEY set without REPODOC_ENDPOINT selects gemini
// 3. Default to ollama
func NewFromEnv(ctx context.Context) (Provider, error) {
	return New(ctx, Config{
		Provider: DetectProvider(),
		Endpoint: os.Getenv(EnvEndpoint),
		Model:    os.Getenv(EnvModel),
		APIKey:   os.Getenv(EnvGeminiAPIKey),
	})
}

// New creates a provider with explicit configuration
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama, "":
		return NewOllamaProvider(cfg.Endpoint, cfg.Model), nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case ProviderLocal:
		return NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvGeminiAPIKey) != "" && os.Getenv(EnvEndpoint) == "" {
		return ProviderGemini
	}
	return ProviderOllama
}

// DefaultModel returns the model a provider uses when none is configured
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderLocal:
		return DefaultLocalModel
	default:
		return DefaultOllamaModel
	}
}

// KnownProvider reports whether name is a supported provider
func KnownProvider(name string) bool {
	switch strings.ToLower(name) {
	case ProviderOllama, ProviderGemini, ProviderLocal:
		return true
	}
	return false
}

// Package provider implements AI backend adapters
package provider

import (
	"fmt"
	"strings"

	"github.com/parley-chat/parley/internal/llm"
)

// Factory creates a provider from its configuration
type Factory func(cfg llm.ProviderConfig) (llm.Provider, error)

// Registry holds all registered provider factories
var Registry = map[llm.ProviderType]Factory{
	llm.ProviderOpenAI: NewOpenAIProvider,
	llm.ProviderGemini: NewGeminiProvider,
	llm.ProviderGroq:   NewGroqProvider,
}

// CreateProvider creates a provider from its configuration
func CreateProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	factory, ok := Registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	return factory(cfg)
}

// CreateAllProviders creates all enabled providers
func CreateAllProviders(configs []llm.ProviderConfig) ([]llm.Provider, error) {
	var providers []llm.Provider

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		p, err := CreateProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Type, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s provider config: %w", cfg.Type, err)
		}
		providers = append(providers, p)
	}

	return providers, nil
}

// BaseProvider provides common functionality for all adapters
type BaseProvider struct {
	Config llm.ProviderConfig
}

// Validate checks if the provider configuration is valid
func (b *BaseProvider) Validate() error {
	if b.Config.APIKey == "" {
		return fmt.Errorf("API key is required for %s provider", b.Config.Type)
	}
	return nil
}

// Model returns the configured model or the given default
func (b *BaseProvider) Model(def string) string {
	if b.Config.Model != "" {
		return b.Config.Model
	}
	return def
}

// checkText enforces the empty-response rule shared by every adapter:
// a technically successful call with no usable text is a failure.
func checkText(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

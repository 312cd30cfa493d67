// Package llm defines the provider-agnostic generation contract shared by
// all AI backend adapters
package llm

import (
	"context"
	"fmt"

	"github.com/parley-chat/parley/internal/image"
)

// ProviderType identifies the AI backend
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
	ProviderGroq   ProviderType = "groq"
)

// String returns the provider type as a string
func (p ProviderType) String() string {
	return string(p)
}

// IsValid reports whether the provider type is known
func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderGemini, ProviderGroq:
		return true
	}
	return false
}

// Provider-layer failures. The orchestrator absorbs all of these into a
// degraded turn; none of them unwind to the caller.
var (
	// ErrEmptyResponse is returned when the backend call succeeds but
	// produces no usable text
	ErrEmptyResponse = fmt.Errorf("provider returned empty response")

	// ErrModerationBlocked is returned when the backend refuses the request
	// on safety grounds
	ErrModerationBlocked = fmt.Errorf("provider blocked request")

	// ErrImagesNotSupported is returned by text-only adapters handed an image
	ErrImagesNotSupported = fmt.Errorf("provider does not support images")
)

// GenerateRequest is one normalized generation call. System carries the full
// assembled context (instructions, rolling summary, recent history); Image is
// nil for text-only turns.
type GenerateRequest struct {
	System   string
	UserText string
	Image    *image.Image

	Model string

	// Temperature nil means the default; zero is a valid (deterministic)
	// setting and is passed through.
	Temperature *float64
	MaxTokens   int
}

// Default generation parameters, used when the request leaves them unset
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// EffectiveTemperature returns the request temperature or the default
func (r *GenerateRequest) EffectiveTemperature() float64 {
	if r.Temperature == nil || *r.Temperature < 0 {
		return DefaultTemperature
	}
	return *r.Temperature
}

// EffectiveMaxTokens returns the request token limit or the default
func (r *GenerateRequest) EffectiveMaxTokens() int {
	if r.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}

// Provider is the interface that all AI backend adapters implement
type Provider interface {
	// Name returns the provider name
	Name() ProviderType

	// SupportsImages reports whether this adapter accepts image input
	SupportsImages() bool

	// Generate executes one generation call and returns the assistant text.
	// Whitespace-only output is an error (ErrEmptyResponse), never a success.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)

	// Validate validates the adapter configuration
	Validate() error
}

// ProviderConfig holds configuration for a single provider
type ProviderConfig struct {
	Type    ProviderType
	APIKey  string
	BaseURL string
	Model   string
	Enabled bool
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/parley-chat/parley/internal/llm"
)

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	defaultGroqModel = "llama-3.3-70b-versatile"
)

// GroqProvider implements the Groq adapter over its OpenAI-compatible API.
// It is text-only: handed an image it fails fast so the orchestrator can
// route to a vision-capable adapter instead.
type GroqProvider struct {
	*BaseProvider
	client *http.Client
}

// NewGroqProvider creates a new Groq provider
func NewGroqProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	return &GroqProvider{
		BaseProvider: &BaseProvider{Config: cfg},
		client:       &http.Client{},
	}, nil
}

// Name returns the provider name
func (g *GroqProvider) Name() llm.ProviderType {
	return llm.ProviderGroq
}

// SupportsImages reports that this adapter is text-only
func (g *GroqProvider) SupportsImages() bool {
	return false
}

// Validate checks if the provider configuration is valid
func (g *GroqProvider) Validate() error {
	if g.Config.APIKey == "" {
		return fmt.Errorf("API key is required for Groq provider")
	}
	return nil
}

// Generate executes one chat completion call
func (g *GroqProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	if req.Image != nil {
		return "", llm.ErrImagesNotSupported
	}

	groqReq := &openAIRequest{
		Model: req.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.UserText},
		},
		MaxTokens:   req.EffectiveMaxTokens(),
		Temperature: req.EffectiveTemperature(),
	}
	if groqReq.Model == "" {
		groqReq.Model = g.Model(defaultGroqModel)
	}

	body, err := json.Marshal(groqReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	baseURL := groqBaseURL
	if g.Config.BaseURL != "" {
		baseURL = g.Config.BaseURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.Config.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error: status %d: %s", resp.StatusCode, string(respBody))
	}

	var groqResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if groqResp.Error != nil {
		return "", fmt.Errorf("API error: %s", groqResp.Error.Message)
	}
	if len(groqResp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}

	choice := groqResp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", llm.ErrModerationBlocked
	}

	return checkText(choice.Message.Content)
}

package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/parley-chat/parley/internal/llm"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements the Gemini adapter using the official genai SDK.
// It is vision-capable: image bytes are attached as inline data parts.
type GeminiProvider struct {
	*BaseProvider
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	return &GeminiProvider{
		BaseProvider: &BaseProvider{Config: cfg},
	}, nil
}

// Name returns the provider name
func (g *GeminiProvider) Name() llm.ProviderType {
	return llm.ProviderGemini
}

// SupportsImages reports that this adapter accepts image input
func (g *GeminiProvider) SupportsImages() bool {
	return true
}

// Validate checks if the provider configuration is valid
func (g *GeminiProvider) Validate() error {
	if g.Config.APIKey == "" {
		return fmt.Errorf("API key is required for Gemini provider")
	}
	return nil
}

// Generate executes one generation call
func (g *GeminiProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.Config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}

	parts := []*genai.Part{genai.NewPartFromText(req.UserText)}
	if req.Image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data},
		})
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.EffectiveTemperature())),
		MaxOutputTokens: int32(req.EffectiveMaxTokens()),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}

	model := req.Model
	if model == "" {
		model = g.Model(defaultGeminiModel)
	}

	res, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", llm.ErrModerationBlocked, res.PromptFeedback.BlockReason)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", llm.ErrEmptyResponse
	}

	candidate := res.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety ||
		candidate.FinishReason == genai.FinishReasonProhibitedContent {
		return "", fmt.Errorf("%w: %s", llm.ErrModerationBlocked, candidate.FinishReason)
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			out.WriteString(part.Text)
		}
	}

	return checkText(out.String())
}

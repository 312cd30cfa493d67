package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/parley-chat/parley/internal/llm"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-4o"
)

// OpenAIProvider implements the OpenAI adapter. It is vision-capable: image
// turns are sent as data-URL image parts alongside the text part.
type OpenAIProvider struct {
	*BaseProvider
	client *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	return &OpenAIProvider{
		BaseProvider: &BaseProvider{Config: cfg},
		client:       &http.Client{},
	}, nil
}

// Name returns the provider name
func (o *OpenAIProvider) Name() llm.ProviderType {
	return llm.ProviderOpenAI
}

// SupportsImages reports that this adapter accepts image input
func (o *OpenAIProvider) SupportsImages() bool {
	return true
}

// Validate checks if the provider configuration is valid
func (o *OpenAIProvider) Validate() error {
	if o.Config.APIKey == "" {
		return fmt.Errorf("API key is required for OpenAI provider")
	}
	return nil
}

// openAIRequest represents OpenAI's chat completions request format
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string, or []openAIContentPart for vision
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Generate executes one chat completion call
func (o *OpenAIProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (string, error) {
	body, err := json.Marshal(o.convertRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	baseURL := openAIBaseURL
	if o.Config.BaseURL != "" {
		baseURL = o.Config.BaseURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.Config.APIKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error: status %d: %s", resp.StatusCode, string(respBody))
	}

	var openAIResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&openAIResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if openAIResp.Error != nil {
		return "", fmt.Errorf("API error: %s", openAIResp.Error.Message)
	}
	if len(openAIResp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}

	choice := openAIResp.Choices[0]
	if choice.FinishReason == "content_filter" || choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: %s", llm.ErrModerationBlocked, choice.Message.Refusal)
	}

	return checkText(choice.Message.Content)
}

// convertRequest converts a generic request to OpenAI format
func (o *OpenAIProvider) convertRequest(req *llm.GenerateRequest) *openAIRequest {
	messages := []openAIMessage{
		{Role: "system", Content: req.System},
	}

	if req.Image != nil {
		dataURL := fmt.Sprintf("data:%s;base64,%s",
			req.Image.MIMEType, base64.StdEncoding.EncodeToString(req.Image.Data))
		messages = append(messages, openAIMessage{
			Role: "user",
			Content: []openAIContentPart{
				{Type: "text", Text: req.UserText},
				{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL, Detail: "high"}},
			},
		})
	} else {
		messages = append(messages, openAIMessage{Role: "user", Content: req.UserText})
	}

	model := req.Model
	if model == "" {
		model = o.Model(defaultOpenAIModel)
	}

	return &openAIRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.EffectiveMaxTokens(),
		Temperature: req.EffectiveTemperature(),
	}
}

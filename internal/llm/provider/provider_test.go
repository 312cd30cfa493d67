package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/parley-chat/parley/internal/image"
	"github.com/parley-chat/parley/internal/llm"
)

func TestCreateProviderUnknownType(t *testing.T) {
	_, err := CreateProvider(llm.ProviderConfig{Type: "mystery"})
	if err == nil {
		t.Error("CreateProvider() with unknown type should fail")
	}
}

func TestCreateAllProvidersSkipsDisabled(t *testing.T) {
	providers, err := CreateAllProviders([]llm.ProviderConfig{
		{Type: llm.ProviderOpenAI, APIKey: "sk-test", Enabled: true},
		{Type: llm.ProviderGroq, APIKey: "gsk-test", Enabled: false},
	})
	if err != nil {
		t.Fatalf("CreateAllProviders() error: %v", err)
	}
	if len(providers) != 1 {
		t.Fatalf("CreateAllProviders() returned %d providers; want 1", len(providers))
	}
	if providers[0].Name() != llm.ProviderOpenAI {
		t.Errorf("provider name = %s; want openai", providers[0].Name())
	}
}

func TestCreateAllProvidersValidates(t *testing.T) {
	_, err := CreateAllProviders([]llm.ProviderConfig{
		{Type: llm.ProviderOpenAI, Enabled: true}, // missing API key
	})
	if err == nil {
		t.Error("CreateAllProviders() with missing API key should fail")
	}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		typ    llm.ProviderType
		vision bool
	}{
		{llm.ProviderOpenAI, true},
		{llm.ProviderGemini, true},
		{llm.ProviderGroq, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			p, err := CreateProvider(llm.ProviderConfig{Type: tt.typ, APIKey: "key"})
			if err != nil {
				t.Fatalf("CreateProvider(%s) error: %v", tt.typ, err)
			}
			if p.SupportsImages() != tt.vision {
				t.Errorf("%s SupportsImages() = %v; want %v", tt.typ, p.SupportsImages(), tt.vision)
			}
		})
	}
}

func TestGroqRejectsImages(t *testing.T) {
	p, err := NewGroqProvider(llm.ProviderConfig{Type: llm.ProviderGroq, APIKey: "key"})
	if err != nil {
		t.Fatalf("NewGroqProvider() error: %v", err)
	}

	_, err = p.Generate(context.Background(), &llm.GenerateRequest{
		UserText: "what is this?",
		Image:    &image.Image{Data: []byte{1}, MIMEType: "image/png"},
	})
	if !errors.Is(err, llm.ErrImagesNotSupported) {
		t.Errorf("Generate() with image error = %v; want ErrImagesNotSupported", err)
	}
}

func TestCheckText(t *testing.T) {
	if _, err := checkText("   \n\t "); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("checkText(whitespace) error = %v; want ErrEmptyResponse", err)
	}
	got, err := checkText("hello")
	if err != nil || got != "hello" {
		t.Errorf("checkText(hello) = (%q, %v); want (hello, nil)", got, err)
	}
}

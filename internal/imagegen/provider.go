package imagegen

import (
	"context"
	"fmt"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
)

// Provider constants
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// NewClient creates an image client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(ctx context.Context, provider, apiKey string) (domain.ImageClient, error) {
	switch provider {
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini image provider")
		}
		return NewGeminiClient(ctx, apiKey)

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI image provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown image provider: %s (valid options: gemini, openai, mock)", provider)
	}
}

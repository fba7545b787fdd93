package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"google.golang.org/genai"
)

const geminiImageModel = "imagen-3.0-generate-002"

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini image client: %w", err)
	}
	return &GeminiClient{client: client, model: geminiImageModel}, nil
}

func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || strings.Contains(apiErr.Status, "RESOURCE_EXHAUSTED")) {
			return "", fmt.Errorf("%w: %v", domain.ErrQuotaExhausted, err)
		}
		return "", fmt.Errorf("gemini generate image: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", domain.ErrEmptyResponse
	}

	img := resp.GeneratedImages[0].Image
	return DataURL(img.MIMEType, img.ImageBytes), nil
}

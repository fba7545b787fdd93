package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
)

const (
	openAIImagesURL = "https://api.openai.com/v1/images/generations"
	model           = "dall-e-3"
	imageSize       = "1024x1024"
)

type OpenAIClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		url:        openAIImagesURL,
		httpClient: &http.Client{},
	}
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(imageRequest{
		Model:          model,
		Prompt:         prompt,
		N:              1,
		Size:           imageSize,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return "", fmt.Errorf("marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: image API returned status 429", domain.ErrQuotaExhausted)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result imageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal image response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("image API error: %s", result.Error.Message)
	}

	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return "", domain.ErrEmptyResponse
	}

	return "data:image/png;base64," + result.Data[0].B64JSON, nil
}

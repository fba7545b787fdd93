package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	chatModel     = "gpt-4o-mini"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// Schemas are sent as a json_schema response format.
type OpenAIClient struct {
	apiKey     string
	url        string
	model      string
	name       string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		url:        openAIChatURL,
		model:      chatModel,
		name:       "openai",
		httpClient: &http.Client{},
	}
}

// WithBaseURL points the client at a different compatible endpoint.
func (c *OpenAIClient) WithBaseURL(url string) *OpenAIClient {
	c.url = url
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Schema *domain.Schema `json:"schema"`
	Strict bool           `json:"strict"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Generate(ctx context.Context, req domain.ModelRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var messages []chatMessage
	if req.SystemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemInstruction})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	cr := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	switch {
	case req.Schema != nil:
		cr.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchemaFormat{Name: schemaName(req.Purpose), Schema: req.Schema},
		}
	case req.JSON:
		cr.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	return c.complete(ctx, cr)
}

func (c *OpenAIClient) complete(ctx context.Context, cr chatRequest) (string, error) {
	body, err := json.Marshal(cr)
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create %s request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", c.name, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: %s returned status 429: %s", domain.ErrQuotaExhausted, c.name, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API returned status %d: %s", c.name, resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal %s response: %w", c.name, err)
	}

	if result.Error != nil {
		if result.Error.Type == "insufficient_quota" {
			return "", fmt.Errorf("%w: %s", domain.ErrQuotaExhausted, result.Error.Message)
		}
		return "", fmt.Errorf("%s API error: %s", c.name, result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", domain.ErrEmptyResponse
	}

	text := strings.TrimSpace(result.Choices[0].Message.Content)
	if text == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}

func schemaName(p domain.Purpose) string {
	if p == "" {
		return "response"
	}
	return strings.NewReplacer(".", "_", " ", "_").Replace(string(p))
}

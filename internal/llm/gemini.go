package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.5-flash"

// GeminiClient calls the Gemini API through the genai SDK. It is the only
// provider with native schema-constrained decoding and a thinking budget.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req domain.ModelRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = geminiDefaultModel
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), geminiConfig(req))
	if err != nil {
		return "", geminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}

func geminiConfig(req domain.ModelRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.JSON || req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.Schema != nil {
		cfg.ResponseSchema = toGenAISchema(req.Schema)
	}
	if req.ThinkingBudget != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: req.ThinkingBudget}
	}
	return cfg
}

// geminiError keeps quota failures distinguishable. The SDK reports them as
// an APIError with code 429 or status RESOURCE_EXHAUSTED.
func geminiError(err error) error {
	if isGeminiQuota(err) {
		return fmt.Errorf("%w: %v", domain.ErrQuotaExhausted, err)
	}
	return fmt.Errorf("gemini generate: %w", err)
}

func isGeminiQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || strings.Contains(apiErr.Status, "RESOURCE_EXHAUSTED")
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || strings.Contains(apiErrPtr.Status, "RESOURCE_EXHAUSTED")
	}
	return false
}

func toGenAISchema(s *domain.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Items:       toGenAISchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenAISchema(prop)
		}
		out.PropertyOrdering = s.PropertyOrder()
	}
	return out
}

func genaiType(t domain.SchemaType) genai.Type {
	switch t {
	case domain.SchemaObject:
		return genai.TypeObject
	case domain.SchemaArray:
		return genai.TypeArray
	case domain.SchemaNumber:
		return genai.TypeNumber
	case domain.SchemaInteger:
		return genai.TypeInteger
	case domain.SchemaBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

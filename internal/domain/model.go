package domain

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExhausted marks a rate-limit or quota failure from a model
	// provider. Callers surface it as a "switch credentials" condition rather
	// than a generic failure.
	ErrQuotaExhausted = errors.New("model quota exhausted")
	ErrEmptyResponse  = errors.New("model returned empty response")
)

// Purpose labels a model call for logging and model selection.
type Purpose string

const (
	PurposeSynthesis Purpose = "synthesis"
	PurposeInsight   Purpose = "insight"
)

// RolePurpose is the purpose label of a persona's role call.
func RolePurpose(p Persona) Purpose {
	return Purpose("role." + string(p))
}

// ModelRequest is one call to a language model. Schema is optional; when set
// the provider constrains decoding where it can, and the caller validates the
// returned text against it either way.
type ModelRequest struct {
	Purpose           Purpose
	Model             string
	SystemInstruction string
	Prompt            string
	Schema            *Schema
	JSON              bool
	Temperature       *float32
	ThinkingBudget    *int32
}

// ModelClient is a stateless request/response language model.
type ModelClient interface {
	Generate(ctx context.Context, req ModelRequest) (string, error)
}

// ImageClient renders a single image and returns it as a data URL.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
)

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeValidated checks text against schema and only then decodes it into
// out. A mismatch is rejected, never coerced.
func DecodeValidated(text string, schema *domain.Schema, out any) error {
	raw := []byte(StripFences(text))
	if len(raw) == 0 {
		return domain.ErrEmptyResponse
	}
	if schema != nil {
		if err := schema.Validate(raw); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)
	}
	return nil
}

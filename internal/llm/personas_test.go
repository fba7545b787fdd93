package llm

import (
	"testing"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersonas_Embedded(t *testing.T) {
	got, err := ParsePersonas(personasYAML)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for _, p := range domain.Personas {
		prof := Profile(p)
		assert.Equal(t, p, prof.ID)
		assert.NotEmpty(t, prof.Title)
		assert.NotEmpty(t, prof.Stance)
		assert.NotEmpty(t, prof.Fields)
	}
}

func TestParsePersonas_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid yaml", "personas: ["},
		{"unknown persona", "personas:\n  - id: jester\n"},
		{"duplicate", "personas:\n  - id: guardian\n  - id: guardian\n  - id: engineer\n"},
		{"missing", "personas:\n  - id: guardian\n  - id: engineer\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePersonas([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

package llm

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var personasYAML []byte

// PersonaProfile is the prompt-facing description of a council persona.
type PersonaProfile struct {
	ID        domain.Persona `yaml:"id"`
	Title     string         `yaml:"title"`
	TitleZh   string         `yaml:"title_zh"`
	Optimizes string         `yaml:"optimizes"`
	Stance    string         `yaml:"stance"`
	Opposes   string         `yaml:"opposes"`
	Fields    []string       `yaml:"fields"`
	Avatar    string         `yaml:"avatar"`
}

var (
	profilesOnce sync.Once
	profiles     map[domain.Persona]PersonaProfile
	profilesErr  error
)

// ParsePersonas decodes a personas document and checks that it describes
// exactly the three council personas.
func ParsePersonas(data []byte) (map[domain.Persona]PersonaProfile, error) {
	var doc struct {
		Personas []PersonaProfile `yaml:"personas"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse personas: %w", err)
	}

	out := make(map[domain.Persona]PersonaProfile, len(doc.Personas))
	for _, p := range doc.Personas {
		if !domain.ValidPersona(string(p.ID)) {
			return nil, fmt.Errorf("unknown persona %q", p.ID)
		}
		if _, dup := out[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona %q", p.ID)
		}
		out[p.ID] = p
	}
	for _, p := range domain.Personas {
		if _, ok := out[p]; !ok {
			return nil, fmt.Errorf("persona %q missing", p)
		}
	}
	return out, nil
}

// Profile returns the embedded profile for p.
func Profile(p domain.Persona) PersonaProfile {
	profilesOnce.Do(func() {
		profiles, profilesErr = ParsePersonas(personasYAML)
	})
	if profilesErr != nil {
		panic(profilesErr)
	}
	return profiles[p]
}

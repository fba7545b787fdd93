package domain

// Persona identifies one of the three fixed council roles.
type Persona string

const (
	PersonaPhilosopher Persona = "philosopher"
	PersonaEngineer    Persona = "engineer"
	PersonaGuardian    Persona = "guardian"
)

// Personas lists the council in its canonical order.
var Personas = []Persona{PersonaPhilosopher, PersonaEngineer, PersonaGuardian}

func ValidPersona(p string) bool {
	switch Persona(p) {
	case PersonaPhilosopher, PersonaEngineer, PersonaGuardian:
		return true
	}
	return false
}

// RoleOutput is one persona's partial answer. Persona-specific fields are
// optional; a degraded role is represented by the zero value.
type RoleOutput struct {
	Stance           string `json:"stance,omitempty"`
	ConflictPoint    string `json:"conflict_point,omitempty"`
	BenevolenceCheck string `json:"benevolence_check,omitempty"`
	CoreValue        string `json:"core_value,omitempty"`
	BlindSpot        string `json:"blind_spot,omitempty"`
	Feasibility      string `json:"feasibility,omitempty"`
	RiskLevel        string `json:"risk_level,omitempty"`
	CriticalTo       string `json:"critical_to,omitempty"`
	AvatarURL        string `json:"avatar_url,omitempty"`
}

// IsEmpty reports whether the role produced nothing usable.
func (r RoleOutput) IsEmpty() bool {
	return r.Stance == "" &&
		r.ConflictPoint == "" &&
		r.BenevolenceCheck == "" &&
		r.CoreValue == "" &&
		r.BlindSpot == "" &&
		r.Feasibility == "" &&
		r.RiskLevel == "" &&
		r.CriticalTo == ""
}

// CouncilChamber is the batch of role outputs. It always carries exactly
// the three persona keys when serialized.
type CouncilChamber struct {
	Philosopher RoleOutput `json:"philosopher"`
	Engineer    RoleOutput `json:"engineer"`
	Guardian    RoleOutput `json:"guardian"`
}

func (c *CouncilChamber) slot(p Persona) *RoleOutput {
	switch p {
	case PersonaPhilosopher:
		return &c.Philosopher
	case PersonaEngineer:
		return &c.Engineer
	case PersonaGuardian:
		return &c.Guardian
	}
	return nil
}

// Get returns the output for p, or the empty record for an unknown persona.
func (c CouncilChamber) Get(p Persona) RoleOutput {
	if s := c.slot(p); s != nil {
		return *s
	}
	return RoleOutput{}
}

// Set stores r under p. Unknown personas are ignored.
func (c *CouncilChamber) Set(p Persona, r RoleOutput) {
	if s := c.slot(p); s != nil {
		*s = r
	}
}

// Populated returns the personas whose output is not empty, in canonical order.
func (c CouncilChamber) Populated() []Persona {
	var out []Persona
	for _, p := range Personas {
		if !c.Get(p).IsEmpty() {
			out = append(out, p)
		}
	}
	return out
}

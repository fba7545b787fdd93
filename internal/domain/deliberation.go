package domain

import "strings"

// DefaultMemoryWindow is how many prior exchanges feed the role prompts.
const DefaultMemoryWindow = 5

// MemoryTurn is one prior exchange as seen by the council.
type MemoryTurn struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

// DeliberationRequest is built once per submission and not modified afterwards.
type DeliberationRequest struct {
	UserText string
	Memory   []MemoryTurn
}

// NewDeliberationRequest copies at most window trailing turns from memory.
func NewDeliberationRequest(userText string, memory []MemoryTurn, window int) DeliberationRequest {
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	if len(memory) > window {
		memory = memory[len(memory)-window:]
	}
	turns := make([]MemoryTurn, len(memory))
	copy(turns, memory)
	return DeliberationRequest{UserText: userText, Memory: turns}
}

type PrimaryPath struct {
	Source    Persona `json:"source"`
	Weight    float64 `json:"weight"`
	Reasoning string  `json:"reasoning"`
}

// Shadow is a persona path that was considered and not taken.
type Shadow struct {
	Source         Persona `json:"source"`
	ConflictReason string  `json:"conflict_reason"`
	CollapseCost   string  `json:"collapse_cost"`
}

type Tension struct {
	Level string  `json:"level"`
	Value float64 `json:"value"`
}

// MaxTensionValue is the upper bound accepted from the synthesizer.
const MaxTensionValue = 1.2

type FinalSynthesis struct {
	ResponseText      string `json:"response_text"`
	ThinkingMonologue string `json:"thinking_monologue,omitempty"`
}

type Audit struct {
	HonestyScore        float64 `json:"honesty_score"`
	AuditRationale      string  `json:"audit_rationale"`
	AuditVerdict        string  `json:"audit_verdict"`
	ResponsibilityCheck string  `json:"responsibility_check"`
}

// Passed matches the verdict labels the model uses for an approved answer.
func (a Audit) Passed() bool {
	v := strings.ToLower(a.AuditVerdict)
	return strings.Contains(v, "pass") || strings.Contains(v, "certified")
}

// Failed matches the verdict labels for a rejected or risky answer.
func (a Audit) Failed() bool {
	v := strings.ToLower(a.AuditVerdict)
	return strings.Contains(v, "fail") || strings.Contains(v, "risk")
}

type NextMove struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type DecisionMatrix struct {
	UserHiddenIntent string `json:"user_hidden_intent"`
	AIStrategyName   string `json:"ai_strategy_name"`
	IntendedEffect   string `json:"intended_effect"`
	ToneTag          string `json:"tone_tag"`
}

// Synthesis is the schema-constrained output of the aggregation call.
type Synthesis struct {
	PrimaryPath    PrimaryPath     `json:"primary_path"`
	Shadows        []Shadow        `json:"shadows"`
	Tension        Tension         `json:"tension"`
	FinalSynthesis FinalSynthesis  `json:"final_synthesis"`
	Audit          Audit           `json:"audit"`
	NextMoves      []NextMove      `json:"next_moves"`
	DecisionMatrix *DecisionMatrix `json:"decision_matrix,omitempty"`
}

// TensionZone buckets a tension value for display and filtering.
type TensionZone string

const (
	ZoneEcho     TensionZone = "echo"
	ZoneFriction TensionZone = "friction"
	ZoneChaos    TensionZone = "chaos"
)

func ValidTensionZone(z string) bool {
	switch TensionZone(z) {
	case ZoneEcho, ZoneFriction, ZoneChaos:
		return true
	}
	return false
}

// ZoneFor maps a value to echo (<0.3), friction (0.3..0.7) or chaos (>0.7).
func ZoneFor(v float64) TensionZone {
	switch {
	case v < 0.3:
		return ZoneEcho
	case v <= 0.7:
		return ZoneFriction
	default:
		return ZoneChaos
	}
}

// EntropyMeter is the display form of the synthesizer's tension.
type EntropyMeter struct {
	Value           float64     `json:"value"`
	Status          string      `json:"status"`
	CalculationNote string      `json:"calculation_note"`
	Zone            TensionZone `json:"zone"`
}

// Deliberation is the assembled result of one exchange.
type Deliberation struct {
	CouncilChamber CouncilChamber  `json:"council_chamber"`
	EntropyMeter   EntropyMeter    `json:"entropy_meter"`
	PrimaryPath    PrimaryPath     `json:"primary_path"`
	Shadows        []Shadow        `json:"shadows"`
	Tension        Tension         `json:"tension"`
	FinalSynthesis FinalSynthesis  `json:"final_synthesis"`
	Audit          *Audit          `json:"audit,omitempty"`
	NextMoves      []NextMove      `json:"next_moves"`
	DecisionMatrix *DecisionMatrix `json:"decision_matrix,omitempty"`
}

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
)

// SystemInstruction frames every council and synthesis call.
const SystemInstruction = `You are the Yu-Hun (語魂) Navigator, an inner council that deliberates before it answers.
Tension is the divergence between council members. Healthy friction is expected; false agreement is not.
Be honest about uncertainty and take responsibility for the consequences of your advice.`

const bilingualMandate = `
BILINGUAL MANDATE: every text value in your JSON response MUST be written as "[Traditional Chinese] / [English]".`

const rolePrompt = `You are the %s (%s) of the inner council. You optimize for %s.
%s
Push against %s.

Read the user's input twice before you answer.
User input: %s
User input (again): %s

Recent memory:
%s
Respond ONLY with a JSON object, no markdown, no explanation:
%s`

const synthesisPrompt = `You are the synthesizer of the inner council. Three personas answered the same input independently.

User input: %s

Council outputs (an empty object means that persona could not answer):
%s

Produce the final judgment:
1. primary_path: select or blend the path to follow. source is the persona whose stance leads; weight is its share in the final answer. The weights of all three paths sum to 1.
2. shadows: list every other persona that produced a stance as a shadow, with conflict_reason (why it was not followed) and collapse_cost (what is lost by not following it). Never list the primary source as a shadow.
3. tension: level is a short label for the divergence between the personas; value is between 0 and 1.2, higher meaning stronger divergence.
4. final_synthesis: response_text is the answer to the user; thinking_monologue explains the blend.
5. audit: check the answer for honesty and responsibility. honesty_score is between 0 and 1; audit_verdict is "Pass" or "Fail"; give audit_rationale and responsibility_check.
6. next_moves: zero or more follow-up prompts the user might choose next, each with a short label and the full text.
7. decision_matrix: the user's hidden intent, the strategy you chose, its intended effect and a tone tag.`

const insightPrompt = `Analyze the whole trajectory of this conversation with the inner council and write an audit report.

Report:
- emotional_arc: how the user's state moved across the exchanges.
- key_insights: the most important things learned, in order of importance.
- hidden_needs: what the user seems to need but has not asked for.
- navigator_rating: connection_score and growth_score, each between 0 and 10.
- closing_advice: one piece of advice for the user going forward.

History (oldest first):
%s`

// RolePrompt is one persona's prompt for a single deliberation.
type RolePrompt struct {
	Persona domain.Persona
	Prompt  string
}

// RolePrompts builds the three independent role prompts, in canonical
// persona order. It has no side effects.
func RolePrompts(req domain.DeliberationRequest, bilingual bool) []RolePrompt {
	digest := MemoryDigest(req.Memory)
	out := make([]RolePrompt, 0, len(domain.Personas))
	for _, p := range domain.Personas {
		prof := Profile(p)
		prompt := fmt.Sprintf(rolePrompt,
			prof.Title, prof.TitleZh, prof.Optimizes,
			prof.Stance,
			prof.Opposes,
			req.UserText, req.UserText,
			digest,
			roleShape(prof),
		)
		if bilingual {
			prompt += bilingualMandate
		}
		out = append(out, RolePrompt{Persona: p, Prompt: prompt})
	}
	return out
}

func roleShape(prof PersonaProfile) string {
	fields := []string{"stance", "conflict_point", "benevolence_check"}
	for _, f := range prof.Fields {
		if !containsString(fields, f) {
			fields = append(fields, f)
		}
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%q:\"...\"", f)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

const maxDigestRunes = 280

// MemoryDigest renders rolling memory as a short numbered list.
func MemoryDigest(turns []domain.MemoryTurn) string {
	if len(turns) == 0 {
		return "(no prior exchanges)\n"
	}
	var sb strings.Builder
	for i, t := range turns {
		sb.WriteString(fmt.Sprintf("%d. user: %s\n   navigator: %s\n", i+1, truncate(t.User), truncate(t.AI)))
	}
	return sb.String()
}

// SynthesisPrompt builds the aggregation prompt from the role batch.
func SynthesisPrompt(userText string, c domain.CouncilChamber, bilingual bool) (string, error) {
	council, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal council: %w", err)
	}
	prompt := fmt.Sprintf(synthesisPrompt, userText, string(council))
	if bilingual {
		prompt += bilingualMandate
	}
	return prompt, nil
}

type insightEntry struct {
	Input   string  `json:"input"`
	Tension float64 `json:"tension"`
	AI      string  `json:"ai"`
	Verdict string  `json:"verdict,omitempty"`
	Error   bool    `json:"error,omitempty"`
}

// InsightPrompt summarizes the history into the trajectory prompt.
func InsightPrompt(nodes []domain.SoulStateNode, bilingual bool) (string, error) {
	entries := make([]insightEntry, 0, len(nodes))
	for _, n := range nodes {
		e := insightEntry{
			Input:   n.Input,
			Tension: n.Deliberation.EntropyMeter.Value,
			AI:      n.Deliberation.FinalSynthesis.ResponseText,
			Error:   n.IsError,
		}
		if n.Deliberation.Audit != nil {
			e.Verdict = n.Deliberation.Audit.AuditVerdict
		}
		entries = append(entries, e)
	}
	history, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	prompt := fmt.Sprintf(insightPrompt, string(history))
	if bilingual {
		prompt += bilingualMandate
	}
	return prompt, nil
}

// AvatarPrompt describes the portrait for a persona given its stance.
func AvatarPrompt(p domain.Persona, stance string) string {
	prof := Profile(p)
	return fmt.Sprintf("Portrait of the %s of an inner council: %s. Mood drawn from this stance: %s",
		prof.Title, prof.Avatar, truncate(stance))
}

func truncate(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= maxDigestRunes {
		return string(r)
	}
	return string(r[:maxDigestRunes]) + "…"
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

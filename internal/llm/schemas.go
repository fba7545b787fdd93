package llm

import "github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"

func personaEnum(desc string) *domain.Schema {
	values := make([]string, len(domain.Personas))
	for i, p := range domain.Personas {
		values[i] = string(p)
	}
	return domain.StringSchema(desc, values...)
}

// SynthesisSchema is the output contract of the synthesizer call.
func SynthesisSchema() *domain.Schema {
	return domain.ObjectSchema(map[string]*domain.Schema{
		"primary_path": domain.ObjectSchema(map[string]*domain.Schema{
			"source":    personaEnum("persona whose stance leads the answer"),
			"weight":    domain.NumberSchema("share of the primary path in the final answer", 0, 1),
			"reasoning": domain.StringSchema("why this path leads"),
		}, "source", "weight", "reasoning"),
		"shadows": domain.ArraySchema("paths considered and not taken",
			domain.ObjectSchema(map[string]*domain.Schema{
				"source":          personaEnum("persona whose path was not taken"),
				"conflict_reason": domain.StringSchema("why it was not followed"),
				"collapse_cost":   domain.StringSchema("what is lost by not following it"),
			}, "source", "conflict_reason", "collapse_cost")),
		"tension": domain.ObjectSchema(map[string]*domain.Schema{
			"level": domain.StringSchema("short label for the divergence"),
			"value": domain.NumberSchema("divergence between personas", 0, domain.MaxTensionValue),
		}, "level", "value"),
		"final_synthesis": domain.ObjectSchema(map[string]*domain.Schema{
			"response_text":      domain.StringSchema("answer to the user"),
			"thinking_monologue": domain.StringSchema("internal monologue explaining the blend"),
		}, "response_text"),
		"audit": domain.ObjectSchema(map[string]*domain.Schema{
			"honesty_score":        domain.NumberSchema("honesty of the answer", 0, 1),
			"audit_rationale":      domain.StringSchema("reasoning behind the verdict"),
			"audit_verdict":        domain.StringSchema("Pass or Fail"),
			"responsibility_check": domain.StringSchema("responsibility review"),
		}, "honesty_score", "audit_rationale", "audit_verdict", "responsibility_check"),
		"next_moves": domain.ArraySchema("suggested follow-up prompts",
			domain.ObjectSchema(map[string]*domain.Schema{
				"label": domain.StringSchema("short button label"),
				"text":  domain.StringSchema("full follow-up prompt"),
			}, "label", "text")),
		"decision_matrix": domain.ObjectSchema(map[string]*domain.Schema{
			"user_hidden_intent": domain.StringSchema(""),
			"ai_strategy_name":   domain.StringSchema(""),
			"intended_effect":    domain.StringSchema(""),
			"tone_tag":           domain.StringSchema(""),
		}),
	}, "primary_path", "shadows", "tension", "final_synthesis", "audit", "next_moves")
}

// InsightSchema is the output contract of the trajectory report.
func InsightSchema() *domain.Schema {
	return domain.ObjectSchema(map[string]*domain.Schema{
		"emotional_arc": domain.StringSchema("movement of the user's state"),
		"key_insights":  domain.ArraySchema("most important insights", domain.StringSchema("")),
		"hidden_needs":  domain.StringSchema("unspoken needs"),
		"navigator_rating": domain.ObjectSchema(map[string]*domain.Schema{
			"connection_score": domain.NumberSchema("", 0, 10),
			"growth_score":     domain.NumberSchema("", 0, 10),
		}, "connection_score", "growth_score"),
		"closing_advice": domain.StringSchema("advice going forward"),
	}, "emotional_arc", "key_insights", "hidden_needs", "navigator_rating", "closing_advice")
}

// RoleSchema describes a persona's free-text JSON answer. Role calls are not
// constrained at decode time; the schema only validates what came back.
func RoleSchema(p domain.Persona) *domain.Schema {
	props := map[string]*domain.Schema{
		"stance":            domain.StringSchema(""),
		"conflict_point":    domain.StringSchema(""),
		"benevolence_check": domain.StringSchema(""),
		"critical_to":       domain.StringSchema(""),
	}
	for _, f := range Profile(p).Fields {
		props[f] = domain.StringSchema("")
	}
	return domain.ObjectSchema(props)
}

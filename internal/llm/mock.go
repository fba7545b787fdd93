package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
)

// Canned responses returned by a fresh MockClient. Together they form one
// valid deliberation: every persona answers and the synthesis shadows the two
// non-primary personas.
const (
	MockPhilosopherResponse = `{"stance":"Meaning first","conflict_point":"speed over depth","benevolence_check":"kind","core_value":"truth"}`
	MockEngineerResponse    = `{"stance":"Ship the smallest step","conflict_point":"abstraction","benevolence_check":"practical","feasibility":"high"}`
	MockGuardianResponse    = "```json\n" + `{"stance":"Protect the user","conflict_point":"risk","benevolence_check":"safe","risk_level":"low","blind_spot":"growth"}` + "\n```"

	MockSynthesisResponse = `{
  "primary_path": {"source": "philosopher", "weight": 0.5, "reasoning": "meaning anchors the answer"},
  "shadows": [
    {"source": "engineer", "conflict_reason": "too narrow", "collapse_cost": "momentum"},
    {"source": "guardian", "conflict_reason": "too cautious", "collapse_cost": "safety margin"}
  ],
  "tension": {"level": "moderate", "value": 0.45},
  "final_synthesis": {"response_text": "Start with why, then take one small safe step.", "thinking_monologue": "blend"},
  "audit": {"honesty_score": 0.9, "audit_rationale": "grounded", "audit_verdict": "Pass", "responsibility_check": "ok"},
  "next_moves": [{"label": "Go deeper", "text": "What does this mean for me?"}],
  "decision_matrix": {"user_hidden_intent": "clarity", "ai_strategy_name": "anchor", "intended_effect": "calm", "tone_tag": "warm"}
}`

	MockInsightResponse = `{
  "emotional_arc": "from confusion to clarity",
  "key_insights": ["the user values meaning"],
  "hidden_needs": "reassurance",
  "navigator_rating": {"connection_score": 8, "growth_score": 7},
  "closing_advice": "keep asking why"
}`
)

// MockClient is a configurable model client for testing. Responses and Errors
// are keyed by purpose; GenerateFunc, when set, overrides both. It is safe
// for concurrent use since role calls run in parallel.
type MockClient struct {
	mu sync.Mutex

	Responses    map[domain.Purpose]string
	Errors       map[domain.Purpose]error
	GenerateFunc func(ctx context.Context, req domain.ModelRequest) (string, error)

	// Call tracking for assertions
	Calls []domain.ModelRequest
}

func NewMockClient() *MockClient {
	return &MockClient{
		Responses: map[domain.Purpose]string{
			domain.RolePurpose(domain.PersonaPhilosopher): MockPhilosopherResponse,
			domain.RolePurpose(domain.PersonaEngineer):    MockEngineerResponse,
			domain.RolePurpose(domain.PersonaGuardian):    MockGuardianResponse,
			domain.PurposeSynthesis:                       MockSynthesisResponse,
			domain.PurposeInsight:                         MockInsightResponse,
		},
		Errors: map[domain.Purpose]error{},
	}
}

func (c *MockClient) Generate(ctx context.Context, req domain.ModelRequest) (string, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, req)
	fn := c.GenerateFunc
	err := c.Errors[req.Purpose]
	resp, ok := c.Responses[req.Purpose]
	c.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(resp) == "" {
		return "", domain.ErrEmptyResponse
	}
	return resp, nil
}

// SetResponse replaces the canned response for a purpose.
func (c *MockClient) SetResponse(p domain.Purpose, resp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Responses[p] = resp
}

// SetError makes every call with the given purpose fail.
func (c *MockClient) SetError(p domain.Purpose, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors[p] = err
}

// CallsFor returns the recorded requests with the given purpose.
func (c *MockClient) CallsFor(p domain.Purpose) []domain.ModelRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.ModelRequest
	for _, r := range c.Calls {
		if r.Purpose == p {
			out = append(out, r)
		}
	}
	return out
}

// CallCount returns the number of recorded calls.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// Reset clears call tracking.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = nil
}

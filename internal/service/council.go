package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/llm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrDeliberationFailed is returned in place of a deliberation whenever the
// synthesis could not be produced. No partial result accompanies it.
var ErrDeliberationFailed = errors.New("deliberation failed")

type CouncilConfig struct {
	RoleModel            string
	SynthesisModel       string
	RoleTemperature      float32
	SynthesisTemperature float32
	ThinkingBudget       int32
	Bilingual            bool
}

func DefaultCouncilConfig() CouncilConfig {
	return CouncilConfig{
		RoleTemperature:      0.9,
		SynthesisTemperature: 0.7,
		ThinkingBudget:       2048,
		Bilingual:            true,
	}
}

// CouncilService runs one deliberation: three role calls in parallel, then
// one schema-constrained synthesis over their outputs. It holds no state
// between calls.
type CouncilService struct {
	client domain.ModelClient
	cfg    CouncilConfig
	logger *zap.Logger
}

func NewCouncilService(client domain.ModelClient, cfg CouncilConfig, logger *zap.Logger) *CouncilService {
	return &CouncilService{client: client, cfg: cfg, logger: logger}
}

// Deliberate returns the assembled deliberation, or nil and an error.
// Quota failures from any call are reported as domain.ErrQuotaExhausted;
// every other failure wraps ErrDeliberationFailed.
func (s *CouncilService) Deliberate(ctx context.Context, req domain.DeliberationRequest) (d *domain.Deliberation, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("deliberation panicked", zap.Any("panic", r))
			d, err = nil, fmt.Errorf("%w: panic: %v", ErrDeliberationFailed, r)
		}
	}()

	if strings.TrimSpace(req.UserText) == "" {
		return nil, ErrEmptyInput
	}

	chamber, err := s.dispatch(ctx, req)
	if err != nil {
		return nil, s.fail("role dispatch", err)
	}

	syn, err := s.synthesize(ctx, req.UserText, chamber)
	if err != nil {
		return nil, s.fail("synthesis", err)
	}

	return assemble(chamber, syn), nil
}

func (s *CouncilService) fail(stage string, err error) error {
	if errors.Is(err, domain.ErrQuotaExhausted) {
		s.logger.Warn("model quota exhausted", zap.String("stage", stage), zap.Error(err))
		return err
	}
	s.logger.Error("deliberation failed", zap.String("stage", stage), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrDeliberationFailed, stage, err)
}

// dispatch issues the three role calls concurrently and waits for all of
// them. A failed or unparseable role degrades to an empty record; only a
// quota signal or a cancelled context aborts the batch.
func (s *CouncilService) dispatch(ctx context.Context, req domain.DeliberationRequest) (domain.CouncilChamber, error) {
	prompts := llm.RolePrompts(req, s.cfg.Bilingual)
	outputs := make([]domain.RoleOutput, len(prompts))

	g, gctx := errgroup.WithContext(ctx)
	for i, rp := range prompts {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Warn("role call panicked, using empty output",
						zap.String("persona", string(rp.Persona)), zap.Any("panic", r))
				}
			}()

			text, err := generate(gctx, s.client, s.logger, domain.ModelRequest{
				Purpose:           domain.RolePurpose(rp.Persona),
				Model:             s.cfg.RoleModel,
				SystemInstruction: llm.SystemInstruction,
				Prompt:            rp.Prompt,
				JSON:              true,
				Temperature:       float32Ptr(s.cfg.RoleTemperature),
			})
			if err != nil {
				if errors.Is(err, domain.ErrQuotaExhausted) {
					return err
				}
				s.logger.Warn("role call failed, using empty output",
					zap.String("persona", string(rp.Persona)), zap.Error(err))
				return nil
			}

			var out domain.RoleOutput
			if err := llm.DecodeValidated(text, llm.RoleSchema(rp.Persona), &out); err != nil {
				s.logger.Warn("role output rejected, using empty output",
					zap.String("persona", string(rp.Persona)), zap.Error(err))
				return nil
			}
			out.AvatarURL = ""
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.CouncilChamber{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.CouncilChamber{}, err
	}

	var chamber domain.CouncilChamber
	for i, rp := range prompts {
		chamber.Set(rp.Persona, outputs[i])
	}
	return chamber, nil
}

func (s *CouncilService) synthesize(ctx context.Context, userText string, chamber domain.CouncilChamber) (*domain.Synthesis, error) {
	prompt, err := llm.SynthesisPrompt(userText, chamber, s.cfg.Bilingual)
	if err != nil {
		return nil, err
	}

	schema := llm.SynthesisSchema()
	text, err := generate(ctx, s.client, s.logger, domain.ModelRequest{
		Purpose:           domain.PurposeSynthesis,
		Model:             s.cfg.SynthesisModel,
		SystemInstruction: llm.SystemInstruction,
		Prompt:            prompt,
		Schema:            schema,
		JSON:              true,
		Temperature:       float32Ptr(s.cfg.SynthesisTemperature),
		ThinkingBudget:    int32Ptr(s.cfg.ThinkingBudget),
	})
	if err != nil {
		return nil, err
	}

	var syn domain.Synthesis
	if err := llm.DecodeValidated(text, schema, &syn); err != nil {
		return nil, err
	}
	if err := validateSynthesis(&syn, chamber); err != nil {
		return nil, err
	}
	return &syn, nil
}

// validateSynthesis enforces what the schema cannot express: every shadow is
// a distinct non-primary persona with a reason, and every non-primary persona
// that produced output is among them. A persona whose role call degraded may
// be listed or left out. Weights are range-checked by the schema only and
// never normalized.
func validateSynthesis(syn *domain.Synthesis, chamber domain.CouncilChamber) error {
	primary := syn.PrimaryPath.Source
	if !domain.ValidPersona(string(primary)) {
		return fmt.Errorf("%w: unknown primary source %q", domain.ErrSchemaMismatch, primary)
	}
	if strings.TrimSpace(syn.FinalSynthesis.ResponseText) == "" {
		return fmt.Errorf("%w: empty response_text", domain.ErrSchemaMismatch)
	}

	seen := make(map[domain.Persona]bool, len(syn.Shadows))
	for _, sh := range syn.Shadows {
		switch {
		case !domain.ValidPersona(string(sh.Source)):
			return fmt.Errorf("%w: unknown shadow source %q", domain.ErrSchemaMismatch, sh.Source)
		case sh.Source == primary:
			return fmt.Errorf("%w: primary source %q listed as shadow", domain.ErrSchemaMismatch, sh.Source)
		case seen[sh.Source]:
			return fmt.Errorf("%w: duplicate shadow %q", domain.ErrSchemaMismatch, sh.Source)
		case strings.TrimSpace(sh.ConflictReason) == "":
			return fmt.Errorf("%w: shadow %q has no conflict_reason", domain.ErrSchemaMismatch, sh.Source)
		}
		seen[sh.Source] = true
	}

	var missing []string
	for _, p := range chamber.Populated() {
		if p != primary && !seen[p] {
			missing = append(missing, string(p))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: shadows missing %v", domain.ErrSchemaMismatch, missing)
	}
	return nil
}

func assemble(chamber domain.CouncilChamber, syn *domain.Synthesis) *domain.Deliberation {
	audit := syn.Audit
	d := &domain.Deliberation{
		CouncilChamber: chamber,
		EntropyMeter: domain.EntropyMeter{
			Value:           syn.Tension.Value,
			Status:          syn.Tension.Level,
			CalculationNote: calculationNote(syn),
			Zone:            domain.ZoneFor(syn.Tension.Value),
		},
		PrimaryPath:    syn.PrimaryPath,
		Shadows:        syn.Shadows,
		Tension:        syn.Tension,
		FinalSynthesis: syn.FinalSynthesis,
		Audit:          &audit,
		NextMoves:      syn.NextMoves,
		DecisionMatrix: syn.DecisionMatrix,
	}
	if d.Shadows == nil {
		d.Shadows = []domain.Shadow{}
	}
	if d.NextMoves == nil {
		d.NextMoves = []domain.NextMove{}
	}
	return d
}

func calculationNote(syn *domain.Synthesis) string {
	return fmt.Sprintf("primary %s at weight %.2f against %d shadow(s)",
		syn.PrimaryPath.Source, syn.PrimaryPath.Weight, len(syn.Shadows))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/llm"
	"go.uber.org/zap"
)

const defaultInsightTimeout = 45 * time.Second

// InsightService produces the trajectory report over a whole history. It
// never reads or writes the history itself.
type InsightService struct {
	client    domain.ModelClient
	model     string
	timeout   time.Duration
	bilingual bool
	logger    *zap.Logger
}

func NewInsightService(client domain.ModelClient, model string, bilingual bool, logger *zap.Logger) *InsightService {
	return &InsightService{
		client:    client,
		model:     model,
		timeout:   defaultInsightTimeout,
		bilingual: bilingual,
		logger:    logger,
	}
}

func (s *InsightService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Generate returns the report or nil and an error. Expiry of the timeout is
// reported as ErrInsightFailed like any other failure; quota signals stay
// distinct.
func (s *InsightService) Generate(ctx context.Context, nodes []domain.SoulStateNode) (r *domain.InsightReport, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("insight panicked", zap.Any("panic", rec))
			r, err = nil, fmt.Errorf("%w: panic: %v", ErrInsightFailed, rec)
		}
	}()

	if len(nodes) == 0 {
		return nil, ErrEmptyHistory
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt, err := llm.InsightPrompt(nodes, s.bilingual)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsightFailed, err)
	}

	schema := llm.InsightSchema()
	text, err := generate(ctx, s.client, s.logger, domain.ModelRequest{
		Purpose: domain.PurposeInsight,
		Model:   s.model,
		Prompt:  prompt,
		Schema:  schema,
		JSON:    true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExhausted) {
			s.logger.Warn("model quota exhausted", zap.String("stage", "insight"), zap.Error(err))
			return nil, err
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Error("insight timed out", zap.Duration("timeout", s.timeout))
			return nil, fmt.Errorf("%w: timed out after %s", ErrInsightFailed, s.timeout)
		}
		s.logger.Error("insight call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInsightFailed, err)
	}

	var report domain.InsightReport
	if err := llm.DecodeValidated(text, schema, &report); err != nil {
		s.logger.Error("insight report rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInsightFailed, err)
	}
	return &report, nil
}

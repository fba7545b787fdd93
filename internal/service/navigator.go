package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/llm"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	fallbackResponse = "抱歉，議會此刻未能達成共識，請再試一次。 / Sorry, the council could not reach a synthesis this time. Please try again."
	fallbackStatus   = "Disconnected / 斷線"
	retryLabel       = "重試 / Retry"
)

// Deliberator runs one deliberation.
type Deliberator interface {
	Deliberate(ctx context.Context, req domain.DeliberationRequest) (*domain.Deliberation, error)
}

// InsightGenerator produces a trajectory report.
type InsightGenerator interface {
	Generate(ctx context.Context, nodes []domain.SoulStateNode) (*domain.InsightReport, error)
}

// AvatarQueue accepts nodes for asynchronous portrait generation.
type AvatarQueue interface {
	Enqueue(session string, node domain.SoulStateNode)
}

// NavigatorStats counts outcomes since start.
type NavigatorStats struct {
	Deliberations int64 `json:"deliberations"`
	Fallbacks     int64 `json:"fallbacks"`
	QuotaErrors   int64 `json:"quota_errors"`
	Insights      int64 `json:"insights"`
}

// Navigator is the top-level flow behind every user-facing action. It owns
// the rule that each accepted submission yields a visible node, even when
// the deliberation itself fails.
type Navigator struct {
	council      Deliberator
	insight      InsightGenerator
	history      *HistoryService
	avatars      AvatarQueue
	memoryWindow int
	logger       *zap.Logger
	now          func() time.Time

	deliberations atomic.Int64
	fallbacks     atomic.Int64
	quotaErrors   atomic.Int64
	insights      atomic.Int64
}

func NewNavigator(council Deliberator, insight InsightGenerator, history *HistoryService, logger *zap.Logger) *Navigator {
	return &Navigator{
		council:      council,
		insight:      insight,
		history:      history,
		memoryWindow: domain.DefaultMemoryWindow,
		logger:       logger,
		now:          time.Now,
	}
}

// SetAvatarQueue enables asynchronous avatar generation.
func (n *Navigator) SetAvatarQueue(q AvatarQueue) {
	n.avatars = q
}

func (n *Navigator) SetMemoryWindow(w int) {
	if w > 0 {
		n.memoryWindow = w
	}
}

func (n *Navigator) History() *HistoryService {
	return n.history
}

// Submit deliberates on text and appends the outcome to the session's
// history. A failed deliberation is recorded as a fallback node carrying a
// retry suggestion. Quota exhaustion and cancellation append nothing and
// return the error.
func (n *Navigator) Submit(ctx context.Context, session, text string) (*domain.SoulStateNode, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if !ValidSession(session) {
		return nil, ErrInvalidSession
	}

	memory, err := n.history.RollingMemory(ctx, session, n.memoryWindow)
	if err != nil {
		return nil, err
	}
	req := domain.NewDeliberationRequest(text, memory, n.memoryWindow)

	d, err := n.council.Deliberate(ctx, req)
	switch {
	case err == nil:
		n.deliberations.Add(1)
	case errors.Is(err, domain.ErrQuotaExhausted):
		n.quotaErrors.Add(1)
		return nil, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, ErrEmptyInput):
		return nil, err
	default:
		n.fallbacks.Add(1)
		n.logger.Warn("recording fallback node", zap.String("session_id", session), zap.Error(err))
		d = fallbackDeliberation(text)
	}

	node := domain.SoulStateNode{
		ID:           newNodeID(),
		Timestamp:    n.now().UnixMilli(),
		Input:        text,
		Deliberation: *d,
		IsError:      err != nil,
	}
	if len(memory) > 0 {
		node.MemoryFragment = llm.MemoryDigest(memory)
	}

	if err := n.history.Append(ctx, session, node); err != nil {
		return nil, err
	}

	if n.avatars != nil && !node.IsError {
		n.avatars.Enqueue(session, node)
	}
	return &node, nil
}

// Insight builds the trajectory report over the session's full history.
func (n *Navigator) Insight(ctx context.Context, session string) (*domain.InsightReport, error) {
	nodes, err := n.history.Snapshot(ctx, session)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrEmptyHistory
	}
	report, err := n.insight.Generate(ctx, nodes)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExhausted) {
			n.quotaErrors.Add(1)
		}
		return nil, err
	}
	n.insights.Add(1)
	return report, nil
}

// Purge erases the session's history.
func (n *Navigator) Purge(ctx context.Context, session string) error {
	if err := n.history.Purge(ctx, session); err != nil {
		return err
	}
	n.logger.Info("history purged", zap.String("session_id", session))
	return nil
}

func (n *Navigator) Stats() NavigatorStats {
	return NavigatorStats{
		Deliberations: n.deliberations.Load(),
		Fallbacks:     n.fallbacks.Load(),
		QuotaErrors:   n.quotaErrors.Load(),
		Insights:      n.insights.Load(),
	}
}

func newNodeID() string {
	return "node_" + strings.ToLower(ulid.Make().String())
}

func fallbackDeliberation(input string) *domain.Deliberation {
	return &domain.Deliberation{
		EntropyMeter: domain.EntropyMeter{
			Status: fallbackStatus,
			Zone:   domain.ZoneEcho,
		},
		Shadows:        []domain.Shadow{},
		FinalSynthesis: domain.FinalSynthesis{ResponseText: fallbackResponse},
		NextMoves:      []domain.NextMove{{Label: retryLabel, Text: input}},
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/llm"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingQueue struct {
	mu    sync.Mutex
	nodes []string
}

func (q *recordingQueue) Enqueue(session string, node domain.SoulStateNode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nodes = append(q.nodes, node.ID)
}

func newTestNavigator(client *llm.MockClient) (*Navigator, *HistoryService) {
	h := newTestHistory(store.NewMemoryStore(), nil)
	council := newTestCouncil(client)
	insight := NewInsightService(client, "", false, zap.NewNop())
	return NewNavigator(council, insight, h, zap.NewNop()), h
}

func TestNavigator_Submit(t *testing.T) {
	ctx := context.Background()
	client := llm.NewMockClient()
	nav, h := newTestNavigator(client)
	q := &recordingQueue{}
	nav.SetAvatarQueue(q)
	nav.now = func() time.Time { return time.UnixMilli(1700000000000) }

	first, err := nav.Submit(ctx, "s1", "  What should I study?  ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ID, "node_"))
	assert.Equal(t, int64(1700000000000), first.Timestamp)
	assert.Equal(t, "What should I study?", first.Input)
	assert.False(t, first.IsError)
	assert.Empty(t, first.MemoryFragment)

	second, err := nav.Submit(ctx, "s1", "And after that?")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Contains(t, second.MemoryFragment, "What should I study?")

	for _, call := range client.CallsFor(domain.RolePurpose(domain.PersonaEngineer))[1:] {
		assert.Contains(t, call.Prompt, "1. user: What should I study?")
	}

	nodes, err := h.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, first.ID, nodes[0].ID)
	assert.Equal(t, []string{first.ID, second.ID}, q.nodes)
	assert.Equal(t, int64(2), nav.Stats().Deliberations)
}

func TestNavigator_SubmitFallbackNode(t *testing.T) {
	ctx := context.Background()
	client := llm.NewMockClient()
	client.SetResponse(domain.PurposeSynthesis, "garbage")
	nav, h := newTestNavigator(client)
	q := &recordingQueue{}
	nav.SetAvatarQueue(q)

	node, err := nav.Submit(ctx, "s1", "hello")
	require.NoError(t, err)
	assert.True(t, node.IsError)
	assert.Equal(t, fallbackResponse, node.Deliberation.FinalSynthesis.ResponseText)
	require.Len(t, node.Deliberation.NextMoves, 1)
	assert.Equal(t, "hello", node.Deliberation.NextMoves[0].Text)

	nodes, err := h.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].IsError)
	assert.Empty(t, q.nodes, "fallback nodes get no avatars")
	assert.Equal(t, int64(1), nav.Stats().Fallbacks)
}

func TestNavigator_SubmitQuotaAppendsNothing(t *testing.T) {
	ctx := context.Background()
	client := llm.NewMockClient()
	client.SetError(domain.PurposeSynthesis, domain.ErrQuotaExhausted)
	nav, h := newTestNavigator(client)

	node, err := nav.Submit(ctx, "s1", "hello")
	assert.Nil(t, node)
	assert.True(t, errors.Is(err, domain.ErrQuotaExhausted))

	nodes, err := h.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Equal(t, int64(1), nav.Stats().QuotaErrors)
}

func TestNavigator_SubmitCancelledAppendsNothing(t *testing.T) {
	client := llm.NewMockClient()
	nav, h := newTestNavigator(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := nav.Submit(ctx, "s1", "hello")
	assert.True(t, errors.Is(err, context.Canceled))

	nodes, err := h.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestNavigator_SubmitValidation(t *testing.T) {
	nav, _ := newTestNavigator(llm.NewMockClient())

	_, err := nav.Submit(context.Background(), "s1", "   ")
	assert.True(t, errors.Is(err, ErrEmptyInput))

	_, err = nav.Submit(context.Background(), "bad session", "hi")
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

// gatedCouncil blocks each deliberation until its input is released.
type gatedCouncil struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	start sync.WaitGroup
}

func (c *gatedCouncil) Deliberate(ctx context.Context, req domain.DeliberationRequest) (*domain.Deliberation, error) {
	c.mu.Lock()
	gate := c.gates[req.UserText]
	c.mu.Unlock()
	c.start.Done()
	<-gate
	return &domain.Deliberation{FinalSynthesis: domain.FinalSynthesis{ResponseText: "re: " + req.UserText}}, nil
}

func TestNavigator_AppendsInCompletionOrder(t *testing.T) {
	ctx := context.Background()
	council := &gatedCouncil{gates: map[string]chan struct{}{
		"first":  make(chan struct{}),
		"second": make(chan struct{}),
	}}
	council.start.Add(2)
	h := newTestHistory(store.NewMemoryStore(), nil)
	nav := NewNavigator(council, nil, h, zap.NewNop())

	var wg sync.WaitGroup
	for _, text := range []string{"first", "second"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := nav.Submit(ctx, "s1", text)
			assert.NoError(t, err)
		}()
	}
	council.start.Wait()

	close(council.gates["second"])
	require.Eventually(t, func() bool {
		nodes, _ := h.Snapshot(ctx, "s1")
		return len(nodes) == 1
	}, 2*time.Second, 5*time.Millisecond)
	close(council.gates["first"])
	wg.Wait()

	nodes, err := h.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "second", nodes[0].Input)
	assert.Equal(t, "first", nodes[1].Input)
}

func TestNavigator_Insight(t *testing.T) {
	ctx := context.Background()
	nav, _ := newTestNavigator(llm.NewMockClient())

	_, err := nav.Insight(ctx, "s1")
	assert.True(t, errors.Is(err, ErrEmptyHistory))

	_, err = nav.Submit(ctx, "s1", "hello")
	require.NoError(t, err)

	report, err := nav.Insight(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, report.ClosingAdvice)
	assert.Equal(t, int64(1), nav.Stats().Insights)
}

func TestNavigator_Purge(t *testing.T) {
	ctx := context.Background()
	nav, h := newTestNavigator(llm.NewMockClient())
	_, err := nav.Submit(ctx, "s1", "hello")
	require.NoError(t, err)

	require.NoError(t, nav.Purge(ctx, "s1"))
	nodes, err := h.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

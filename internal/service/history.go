package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/store"
	"go.uber.org/zap"
)

const (
	DefaultHistoryKey       = "yuhun_history_v3"
	DefaultHistoryCacheSize = 1024
)

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidSession reports whether s can be used as a session id.
func ValidSession(s string) bool {
	return sessionPattern.MatchString(s)
}

type sessionHistory struct {
	mu     sync.Mutex
	loaded bool
	nodes  []domain.SoulStateNode

	// guarded by HistoryService.mu
	refs     int
	lastUsed uint64
}

// HistoryService owns every session's history. Each mutation builds a new
// slice, persists it, and only then swaps it in, so a snapshot handed out
// earlier is never modified. At most cacheSize sessions stay in memory; the
// least recently used idle session is dropped and reloaded from the store on
// its next use.
type HistoryService struct {
	store     domain.HistoryStore
	keyPrefix string
	sink      domain.EventSink
	logger    *zap.Logger

	mu        sync.Mutex
	sessions  map[string]*sessionHistory
	cacheSize int
	tick      uint64
}

func NewHistoryService(hs domain.HistoryStore, keyPrefix string, sink domain.EventSink, logger *zap.Logger) *HistoryService {
	if keyPrefix == "" {
		keyPrefix = DefaultHistoryKey
	}
	if sink == nil {
		sink = domain.NopSink{}
	}
	return &HistoryService{
		store:     hs,
		keyPrefix: keyPrefix,
		sink:      sink,
		logger:    logger,
		sessions:  make(map[string]*sessionHistory),
		cacheSize: DefaultHistoryCacheSize,
	}
}

// SetCacheSize changes how many sessions are kept in memory.
func (s *HistoryService) SetCacheSize(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheSize = n
	s.evictLocked()
}

// CachedSessions returns the number of sessions held in memory.
func (s *HistoryService) CachedSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *HistoryService) key(session string) string {
	return s.keyPrefix + ":" + session
}

// acquire pins the session's entry until release is called. A pinned entry
// is never evicted, so every caller of one session shares one mutex.
func (s *HistoryService) acquire(session string) (*sessionHistory, func(), error) {
	if !ValidSession(session) {
		return nil, nil, ErrInvalidSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.sessions[session]
	if !ok {
		h = &sessionHistory{}
		s.sessions[session] = h
	}
	s.tick++
	h.lastUsed = s.tick
	h.refs++

	release := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		h.refs--
		s.evictLocked()
	}
	return h, release, nil
}

// evictLocked drops idle sessions, oldest first, until the cache fits.
// It must be called with s.mu held.
func (s *HistoryService) evictLocked() {
	for len(s.sessions) > s.cacheSize {
		var (
			victim string
			oldest uint64
			found  bool
		)
		for id, h := range s.sessions {
			if h.refs > 0 {
				continue
			}
			if !found || h.lastUsed < oldest {
				victim, oldest, found = id, h.lastUsed, true
			}
		}
		if !found {
			return
		}
		delete(s.sessions, victim)
	}
}

// load must be called with h.mu held.
func (s *HistoryService) load(ctx context.Context, session string, h *sessionHistory) error {
	if h.loaded {
		return nil
	}
	blob, err := s.store.Load(ctx, s.key(session))
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.nodes = []domain.SoulStateNode{}
	case err != nil:
		return fmt.Errorf("load history: %w", err)
	default:
		nodes, err := DecodeHistory(blob)
		if err != nil {
			s.logger.Warn("discarding corrupt history",
				zap.String("session_id", session), zap.Error(err))
			if err := s.store.Delete(ctx, s.key(session)); err != nil && !errors.Is(err, store.ErrNotFound) {
				s.logger.Error("failed to delete corrupt history",
					zap.String("session_id", session), zap.Error(err))
			}
			nodes = []domain.SoulStateNode{}
		}
		h.nodes = nodes
	}
	h.loaded = true
	return nil
}

// save persists nodes and swaps them in. It must be called with h.mu held.
func (s *HistoryService) save(ctx context.Context, session string, h *sessionHistory, nodes []domain.SoulStateNode) error {
	blob, err := EncodeHistory(nodes)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, s.key(session), blob); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	h.nodes = nodes
	return nil
}

// Snapshot returns the session's history in append order. Callers must not
// modify the returned slice.
func (s *HistoryService) Snapshot(ctx context.Context, session string) ([]domain.SoulStateNode, error) {
	h, release, err := s.acquire(session)
	if err != nil {
		return nil, err
	}
	defer release()
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := s.load(ctx, session, h); err != nil {
		return nil, err
	}
	return h.nodes, nil
}

func (s *HistoryService) Get(ctx context.Context, session, id string) (*domain.SoulStateNode, error) {
	nodes, err := s.Snapshot(ctx, session)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		if nodes[i].ID == id {
			n := nodes[i]
			return &n, nil
		}
	}
	return nil, ErrNodeNotFound
}

// Append adds node at the end of the session's history.
func (s *HistoryService) Append(ctx context.Context, session string, node domain.SoulStateNode) error {
	h, release, err := s.acquire(session)
	if err != nil {
		return err
	}
	defer release()
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := s.load(ctx, session, h); err != nil {
		return err
	}

	next := make([]domain.SoulStateNode, len(h.nodes), len(h.nodes)+1)
	copy(next, h.nodes)
	next = append(next, node)
	if err := s.save(ctx, session, h, next); err != nil {
		return err
	}

	s.sink.Publish(domain.HistoryEvent{Type: domain.HistoryAppended, Session: session, NodeID: node.ID, Node: &node})
	return nil
}

// PatchAvatars sets avatar URLs on the node with the given id. Only the
// named personas' avatar fields change; a patch that changes nothing is not
// persisted again.
func (s *HistoryService) PatchAvatars(ctx context.Context, session, id string, urls map[domain.Persona]string) (*domain.SoulStateNode, error) {
	h, release, err := s.acquire(session)
	if err != nil {
		return nil, err
	}
	defer release()
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := s.load(ctx, session, h); err != nil {
		return nil, err
	}

	idx := -1
	for i := range h.nodes {
		if h.nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNodeNotFound
	}

	node := h.nodes[idx]
	changed := false
	for p, url := range urls {
		if !domain.ValidPersona(string(p)) || url == "" {
			continue
		}
		role := node.Deliberation.CouncilChamber.Get(p)
		if role.AvatarURL == url {
			continue
		}
		role.AvatarURL = url
		node.Deliberation.CouncilChamber.Set(p, role)
		changed = true
	}
	if !changed {
		return &node, nil
	}

	next := make([]domain.SoulStateNode, len(h.nodes))
	copy(next, h.nodes)
	next[idx] = node
	if err := s.save(ctx, session, h, next); err != nil {
		return nil, err
	}

	s.sink.Publish(domain.HistoryEvent{Type: domain.HistoryAvatarsPatched, Session: session, NodeID: id, Node: &node})
	return &node, nil
}

// Purge removes the whole history of a session.
func (s *HistoryService) Purge(ctx context.Context, session string) error {
	h, release, err := s.acquire(session)
	if err != nil {
		return err
	}
	defer release()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.store.Delete(ctx, s.key(session)); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("purge history: %w", err)
	}
	h.nodes = []domain.SoulStateNode{}
	h.loaded = true

	s.sink.Publish(domain.HistoryEvent{Type: domain.HistoryPurged, Session: session})
	return nil
}

// RollingMemory returns the last window exchanges that produced a real
// answer, oldest first. Fallback nodes are skipped.
func (s *HistoryService) RollingMemory(ctx context.Context, session string, window int) ([]domain.MemoryTurn, error) {
	nodes, err := s.Snapshot(ctx, session)
	if err != nil {
		return nil, err
	}
	if window <= 0 {
		window = domain.DefaultMemoryWindow
	}
	var turns []domain.MemoryTurn
	for i := len(nodes) - 1; i >= 0 && len(turns) < window; i-- {
		if nodes[i].IsError {
			continue
		}
		turns = append(turns, nodes[i].Turn())
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/llm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAvatarWorkers = 2
	avatarQueueSize      = 64
	avatarJobTimeout     = 2 * time.Minute
)

type avatarJob struct {
	session string
	nodeID  string
	stances map[domain.Persona]string
}

// AvatarService renders persona portraits after a deliberation has been
// returned. Results are applied with HistoryService.PatchAvatars by node id,
// so a job finishing late still lands on the right node. Failures are
// logged and dropped.
type AvatarService struct {
	images  domain.ImageClient
	history *HistoryService
	logger  *zap.Logger

	workers  int
	jobs     chan avatarJob
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// ctx bounds in-flight jobs; Stop cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewAvatarService(images domain.ImageClient, history *HistoryService, logger *zap.Logger) *AvatarService {
	ctx, cancel := context.WithCancel(context.Background())
	return &AvatarService{
		images:  images,
		history: history,
		logger:  logger,
		workers: defaultAvatarWorkers,
		jobs:    make(chan avatarJob, avatarQueueSize),
		stopCh:  make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *AvatarService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// Start launches the worker goroutines.
func (s *AvatarService) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case job := <-s.jobs:
					ctx, cancel := context.WithTimeout(s.ctx, avatarJobTimeout)
					s.run(ctx, job)
					cancel()
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	s.logger.Info("avatar workers started", zap.Int("workers", s.workers))
}

// Stop stops the workers and cancels in-flight jobs. Queued jobs are
// discarded. It is safe to call more than once.
func (s *AvatarService) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.stopCh)
		s.wg.Wait()
		s.logger.Info("avatar workers stopped")
	})
}

// Enqueue schedules portraits for every persona of node that produced a
// stance. It never blocks; a full queue drops the job.
func (s *AvatarService) Enqueue(session string, node domain.SoulStateNode) {
	if node.IsError {
		return
	}
	stances := make(map[domain.Persona]string)
	for _, p := range node.Deliberation.CouncilChamber.Populated() {
		stances[p] = node.Deliberation.CouncilChamber.Get(p).Stance
	}
	if len(stances) == 0 {
		return
	}

	select {
	case s.jobs <- avatarJob{session: session, nodeID: node.ID, stances: stances}:
	default:
		s.logger.Warn("avatar queue full, dropping job",
			zap.String("session_id", session), zap.String("node_id", node.ID))
	}
}

func (s *AvatarService) run(ctx context.Context, job avatarJob) {
	var (
		mu   sync.Mutex
		urls = make(map[domain.Persona]string, len(job.stances))
	)

	var g errgroup.Group
	for p, stance := range job.stances {
		g.Go(func() error {
			url, err := s.images.GenerateImage(ctx, llm.AvatarPrompt(p, stance))
			if err != nil {
				s.logger.Warn("avatar generation failed",
					zap.String("node_id", job.nodeID),
					zap.String("persona", string(p)),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			urls[p] = url
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(urls) == 0 {
		return
	}
	if _, err := s.history.PatchAvatars(ctx, job.session, job.nodeID, urls); err != nil {
		s.logger.Warn("failed to patch avatars",
			zap.String("session_id", job.session),
			zap.String("node_id", job.nodeID),
			zap.Error(err))
		return
	}
	s.logger.Debug("avatars patched",
		zap.String("session_id", job.session),
		zap.String("node_id", job.nodeID),
		zap.Int("count", len(urls)))
}

// Package bootstrap wires the deliberation services from configuration. It
// is shared by the HTTP server, the CLI and the seed script, none of which
// needs the others' transport.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/config"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/imagegen"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/llm"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"go.uber.org/zap"
)

// Deps are the external clients the services are built from. Images may be
// nil, which disables avatars. Sink may be nil.
type Deps struct {
	Models domain.ModelClient
	Images domain.ImageClient
	Store  domain.HistoryStore
	Sink   domain.EventSink
	Logger *zap.Logger
}

// Services is the wired service graph.
type Services struct {
	Navigator *service.Navigator
	History   *service.HistoryService
	Avatars   *service.AvatarService
}

// Clients builds the model client named by the environment and, when
// withImages is set and avatars are enabled, the image client. An image
// client that fails to initialize disables avatars instead of failing.
func Clients(ctx context.Context, logger *zap.Logger, withImages bool) (domain.ModelClient, domain.ImageClient, error) {
	provider := config.LLMProvider()
	models, err := llm.NewClient(ctx, provider, config.LLMAPIKey())
	if err != nil {
		return nil, nil, fmt.Errorf("init model client: %w", err)
	}
	logger.Info("model client initialized", zap.String("provider", provider))

	if !withImages || !config.AvatarsEnabled() {
		return models, nil, nil
	}
	imageProvider := config.ImageProvider()
	images, err := imagegen.NewClient(ctx, imageProvider, config.ImageAPIKey())
	if err != nil {
		logger.Warn("image client initialization failed, avatars disabled",
			zap.String("provider", imageProvider), zap.Error(err))
		return models, nil, nil
	}
	logger.Info("image client initialized", zap.String("provider", imageProvider))
	return models, images, nil
}

// Build wires history, council, insight, navigator and, when deps.Images is
// set, the avatar workers. The avatar workers are not started.
func Build(deps Deps) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	history := service.NewHistoryService(deps.Store, config.HistoryKey(), deps.Sink, logger)
	history.SetCacheSize(config.HistoryCacheSize())

	council := service.NewCouncilService(deps.Models, service.CouncilConfig{
		RoleModel:            config.RoleModel(),
		SynthesisModel:       config.SynthesisModel(),
		RoleTemperature:      config.RoleTemperature(),
		SynthesisTemperature: config.SynthesisTemperature(),
		ThinkingBudget:       config.SynthesisThinkingBudget(),
		Bilingual:            config.Bilingual(),
	}, logger)

	insight := service.NewInsightService(deps.Models, config.InsightModel(), config.Bilingual(), logger)
	insight.SetTimeout(config.InsightTimeout())

	nav := service.NewNavigator(council, insight, history, logger)
	nav.SetMemoryWindow(config.MemoryWindow())

	svc := &Services{Navigator: nav, History: history}
	if deps.Images != nil {
		svc.Avatars = service.NewAvatarService(deps.Images, history, logger)
		svc.Avatars.SetWorkers(config.AvatarWorkers())
		nav.SetAvatarQueue(svc.Avatars)
	}
	return svc
}

// Ensure clients satisfy interfaces at compile time.
var (
	_ domain.ModelClient = (*llm.OpenAIClient)(nil)
	_ domain.ModelClient = (*llm.AnthropicClient)(nil)
	_ domain.ModelClient = (*llm.GeminiClient)(nil)
	_ domain.ModelClient = (*llm.CerebrasClient)(nil)
	_ domain.ModelClient = (*llm.MockClient)(nil)
	_ domain.ImageClient = (*imagegen.OpenAIClient)(nil)
	_ domain.ImageClient = (*imagegen.GeminiClient)(nil)
	_ domain.ImageClient = (*imagegen.MockClient)(nil)

	_ service.Deliberator      = (*service.CouncilService)(nil)
	_ service.InsightGenerator = (*service.InsightService)(nil)
	_ service.AvatarQueue      = (*service.AvatarService)(nil)
)

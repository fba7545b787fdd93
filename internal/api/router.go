package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/api/events"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/api/handlers"
	mw "github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/api/middleware"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/bootstrap"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/buildconfig"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/config"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router    *chi.Mux
	Navigator *service.Navigator
	Hub       *events.Hub
	Avatars   *service.AvatarService

	store        domain.HistoryStore
	logger       *zap.Logger
	cancel       context.CancelFunc
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
	quotaCount   atomic.Int64
}

// Deps are the external clients an App is built from. Images may be nil,
// which disables avatars.
type Deps struct {
	Models domain.ModelClient
	Images domain.ImageClient
	Store  domain.HistoryStore
	Logger *zap.Logger
}

// NewApp builds the model and image clients named by the environment and
// wires them with hs.
func NewApp(ctx context.Context, hs domain.HistoryStore, logger *zap.Logger) (*App, error) {
	models, images, err := bootstrap.Clients(ctx, logger, true)
	if err != nil {
		return nil, err
	}
	return NewAppWithDeps(ctx, Deps{Models: models, Images: images, Store: hs, Logger: logger}), nil
}

func NewAppWithDeps(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	ctx, cancel := context.WithCancel(ctx)

	hub := events.NewHub(logger)
	svc := bootstrap.Build(bootstrap.Deps{
		Models: deps.Models,
		Images: deps.Images,
		Store:  deps.Store,
		Sink:   hub,
		Logger: logger,
	})
	nav, avatars := svc.Navigator, svc.Avatars

	app := &App{
		Router:    chi.NewRouter(),
		Navigator: nav,
		Hub:       hub,
		Avatars:   avatars,
		store:     deps.Store,
		logger:    logger,
		cancel:    cancel,
		startTime: time.Now(),
	}
	app.routes(ctx)
	return app
}

func (app *App) routes(ctx context.Context) {
	r := app.Router

	deliberationHandler := handlers.NewDeliberationHandler(app.Navigator, app.logger)
	historyHandler := handlers.NewHistoryHandler(app.Navigator)
	insightHandler := handlers.NewInsightHandler(app.Navigator)
	eventsHandler := handlers.NewEventsHandler(app.Hub)

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount, &app.quotaCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(ctx, config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.BearerAuth(config.APIToken()))

		r.Route("/sessions/{session}", func(r chi.Router) {
			r.Post("/deliberations", deliberationHandler.Create)
			r.Post("/insight", insightHandler.Create)
			r.Get("/tension", historyHandler.Tension)
			r.Get("/events", eventsHandler.Stream)

			r.Route("/history", func(r chi.Router) {
				r.Get("/", historyHandler.List)
				r.Delete("/", historyHandler.Purge)
				r.Get("/{id}", historyHandler.Get)
			})
		})
	})
}

// Start launches background workers.
func (app *App) Start() {
	if app.Avatars != nil {
		app.Avatars.Start()
	}
}

// Stop halts background workers and disconnects event subscribers. The
// history store is owned by the caller.
func (app *App) Stop() {
	if app.Avatars != nil {
		app.Avatars.Stop()
	}
	app.Hub.Close()
	app.cancel()
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if p, ok := app.store.(store.Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "build": buildconfig.VersionInfo()})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"status_429":     app.quotaCount.Load(),
			"navigator":      app.Navigator.Stats(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure the hub satisfies the sink interface at compile time.
var _ domain.EventSink = (*events.Hub)(nil)

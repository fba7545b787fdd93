package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/api"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/buildconfig"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/config"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = config.Load()

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	backend := config.HistoryBackend()
	hs, err := store.Open(ctx, backend, store.Options{
		SQLitePath:    config.SQLitePath(),
		DatabaseURL:   config.DatabaseURL(),
		RedisURL:      config.RedisURL(),
		MongoURI:      config.MongoURI(),
		MongoDatabase: config.MongoDatabase(),
	})
	if err != nil {
		logger.Fatal("failed to open history store", zap.String("backend", backend), zap.Error(err))
	}
	defer func() { _ = hs.Close() }()
	logger.Info("history store opened", zap.String("backend", backend))

	app, err := api.NewApp(ctx, hs, logger)
	if err != nil {
		logger.Fatal("failed to build app", zap.Error(err))
	}
	app.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("build", buildconfig.String()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Shutdown waits for in-flight deliberations, whose nodes may still
	// enqueue avatar jobs, so the workers stop after it.
	shutdownCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	app.Stop()
	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

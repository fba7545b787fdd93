package service

import (
	"context"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"go.uber.org/zap"
)

// generate performs one model call and logs its purpose and duration.
func generate(ctx context.Context, client domain.ModelClient, logger *zap.Logger, req domain.ModelRequest) (string, error) {
	start := time.Now()
	text, err := client.Generate(ctx, req)
	logger.Debug("model call",
		zap.String("purpose", string(req.Purpose)),
		zap.String("model", req.Model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("response_bytes", len(text)),
		zap.Bool("failed", err != nil))
	return text, err
}

func float32Ptr(v float32) *float32 { return &v }

func int32Ptr(v int32) *int32 { return &v }

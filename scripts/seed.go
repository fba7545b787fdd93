// Seed script for creating demo history in the configured store.
// Run with: go run ./scripts/seed.go [session]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/bootstrap"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/config"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/llm"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/store"
	"go.uber.org/zap"
)

var demoQuestions = []string{
	"I keep postponing a hard conversation with my manager. Why?",
	"Should I take the safer job offer or the startup one?",
	"How do I stop feeling guilty about resting?",
}

func main() {
	_ = config.Load()

	session := "demo"
	if len(os.Args) > 1 {
		session = os.Args[1]
	}

	ctx := context.Background()
	hs, err := store.Open(ctx, config.HistoryBackend(), store.Options{
		SQLitePath:    config.SQLitePath(),
		DatabaseURL:   config.DatabaseURL(),
		RedisURL:      config.RedisURL(),
		MongoURI:      config.MongoURI(),
		MongoDatabase: config.MongoDatabase(),
	})
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer func() { _ = hs.Close() }()

	// Canned model answers keep the seed offline and deterministic.
	svc := bootstrap.Build(bootstrap.Deps{
		Models: llm.NewMockClient(),
		Store:  hs,
		Logger: zap.NewNop(),
	})

	for _, q := range demoQuestions {
		node, err := svc.Navigator.Submit(ctx, session, q)
		if err != nil {
			log.Fatalf("Failed to seed %q: %v", q, err)
		}
		fmt.Printf("  %s  %s\n", node.ID, q)
	}

	fmt.Println()
	fmt.Println("========================================")
	fmt.Printf("Seeded %d nodes into session %q (%s backend)\n", len(demoQuestions), session, config.HistoryBackend())
	fmt.Println("========================================")
}

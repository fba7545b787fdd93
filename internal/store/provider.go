package store

import (
	"context"
	"fmt"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend constants
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Options carries the connection settings of every backend; only the
// fields of the selected backend are read.
type Options struct {
	SQLitePath    string
	DatabaseURL   string
	RedisURL      string
	MongoURI      string
	MongoDatabase string
}

// Open creates a history store for the named backend.
func Open(ctx context.Context, backend string, opts Options) (domain.HistoryStore, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil

	case BackendSQLite:
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required for sqlite backend")
		}
		return NewSQLiteStore(opts.SQLitePath)

	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres backend")
		}
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		s := NewPostgresStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil

	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for redis backend")
		}
		return NewRedisStore(ctx, opts.RedisURL)

	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for mongo backend")
		}
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)

	default:
		return nil, fmt.Errorf("unknown history backend: %s (valid options: memory, sqlite, postgres, redis, mongo)", backend)
	}
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *MongoStore) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

var (
	_ domain.HistoryStore = (*MemoryStore)(nil)
	_ domain.HistoryStore = (*SQLiteStore)(nil)
	_ domain.HistoryStore = (*PostgresStore)(nil)
	_ domain.HistoryStore = (*RedisStore)(nil)
	_ domain.HistoryStore = (*MongoStore)(nil)
)

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared contract against any backend.
func exerciseStore(t *testing.T, s interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}) {
	t.Helper()
	ctx := context.Background()
	key := "yuhun_history_v3:test-" + t.Name()
	_ = s.Delete(ctx, key)

	_, err := s.Load(ctx, key)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	require.NoError(t, s.Save(ctx, key, []byte(`[{"id":"a"}]`)))
	got, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, s.Save(ctx, key, []byte(`[{"id":"a"},{"id":"b"}]`)))
	got, err = s.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"},{"id":"b"}]`, string(got))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Load(ctx, key)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.Delete(ctx, key), ErrNotFound))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesBlobs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	blob := []byte(`[]`)
	require.NoError(t, s.Save(ctx, "k", blob))
	blob[0] = 'x'

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "yuhun.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
	require.NoError(t, s.Ping(context.Background()))
}

func TestSQLiteStore_KeepsCorruptBlobVerbatim(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "k", []byte(`{"not":"an array"}`)))
	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"not":"an array"}`, string(got))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yuhun.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "k", []byte(`[1]`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	s := NewPostgresStore(pool)
	defer s.Close()
	require.NoError(t, s.EnsureSchema(ctx))

	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	s, err := NewRedisStore(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	s, err := NewMongoStore(context.Background(), uri, "yuhun_test")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, BackendMemory, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, BackendSQLite, Options{SQLitePath: filepath.Join(t.TempDir(), "h.db")})
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	_, err = Open(ctx, BackendPostgres, Options{})
	assert.Error(t, err)
	_, err = Open(ctx, BackendRedis, Options{})
	assert.Error(t, err)
	_, err = Open(ctx, BackendMongo, Options{})
	assert.Error(t, err)
	_, err = Open(ctx, "floppy", Options{})
	assert.Error(t, err)
}

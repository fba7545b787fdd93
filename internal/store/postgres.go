package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/001_soul_history.sql
var soulHistorySchema string

// PostgresStore keeps one jsonb row per history key.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the history table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, soulHistorySchema); err != nil {
		return fmt.Errorf("ensure soul_history schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(ctx,
		`SELECT blob::text FROM soul_history WHERE key = $1`,
		key,
	).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return blob, nil
}

// Save requires blob to be valid JSON. jsonb does not preserve whitespace
// or key order, so Load returns an equivalent document, not the same bytes.
func (s *PostgresStore) Save(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO soul_history (key, blob, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (key) DO UPDATE SET blob = EXCLUDED.blob, updated_at = NOW()`,
		key, string(blob),
	)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM soul_history WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

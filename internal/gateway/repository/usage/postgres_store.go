package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codeassist/internal/util/syncutil"
)

type PostgresStore struct {
	db     *sql.DB
	schema syncutil.InitOnce
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	return s.schema.Do(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS api_usage (
    user_id TEXT NOT NULL,
    period TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    PRIMARY KEY (user_id, period)
);
`)
		return err
	})
}

func (s *PostgresStore) Get(ctx context.Context, userID, period string) (int, error) {
	userID, period, err := checkKey(userID, period)
	if err != nil {
		return 0, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx,
		`SELECT count FROM api_usage WHERE user_id=$1 AND period=$2`, userID, period).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (s *PostgresStore) Increment(ctx context.Context, userID, period string) (int, error) {
	userID, period, err := checkKey(userID, period)
	if err != nil {
		return 0, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, `
INSERT INTO api_usage (user_id, period, count, updated_at)
VALUES ($1, $2, 1, NOW())
ON CONFLICT (user_id, period)
DO UPDATE SET count=api_usage.count+1, updated_at=NOW()
RETURNING count
`, userID, period).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Reserve(ctx context.Context, userID, period string, limit int) (int, bool, error) {
	userID, period, err := checkKey(userID, period)
	if err != nil {
		return 0, false, err
	}
	if limit <= 0 {
		n, err := s.Get(ctx, userID, period)
		return n, false, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return 0, false, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, `
INSERT INTO api_usage (user_id, period, count, updated_at)
VALUES ($1, $2, 1, NOW())
ON CONFLICT (user_id, period)
DO UPDATE SET count=api_usage.count+1, updated_at=NOW()
WHERE api_usage.count < $3
RETURNING count
`, userID, period, limit).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		n, err = s.Get(ctx, userID, period)
		return n, false, err
	}
	if err != nil {
		return 0, false, fmt.Errorf("reserve usage: %w", err)
	}
	return n, true, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	return s.db.PingContext(ctx)
}

package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"codeassist/internal/codeassist"
	"codeassist/internal/util/jsonutil"
	"codeassist/internal/util/syncutil"
)

const recordCacheSize = 1024

// PostgresStore keeps analyses in the code_analyses table. Records are
// immutable once created, so Get is served from an LRU keyed by id.
type PostgresStore struct {
	db     *sql.DB
	schema syncutil.InitOnce
	cache  *lru.Cache[string, Record]
	now    func() time.Time
}

// NewPostgresStore expects db opened with the "pgx" driver.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	cache, err := lru.New[string, Record](recordCacheSize)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, cache: cache, now: time.Now}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	return s.schema.Do(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS code_analyses (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    code TEXT NOT NULL,
    language TEXT NOT NULL DEFAULT 'javascript',
    bugs JSONB NOT NULL DEFAULT '[]'::jsonb,
    quality_score INTEGER NOT NULL CHECK (quality_score BETWEEN 0 AND 100),
    suggestions JSONB NOT NULL DEFAULT '[]'::jsonb,
    complexity TEXT NOT NULL,
    security_issues JSONB NOT NULL DEFAULT '[]'::jsonb,
    status TEXT NOT NULL DEFAULT 'completed',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_code_analyses_user_created ON code_analyses(user_id, created_at DESC);
`)
		return err
	})
}

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := prepare(rec, s.now()); err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	bugs, err := jsonutil.MarshalNoEscape(rec.Bugs)
	if err != nil {
		return fmt.Errorf("encode bugs: %w", err)
	}
	suggestions, err := jsonutil.MarshalNoEscape(rec.Suggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	security, err := jsonutil.MarshalNoEscape(rec.SecurityIssues)
	if err != nil {
		return fmt.Errorf("encode security issues: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO code_analyses (id, user_id, code, language, bugs, quality_score, suggestions, complexity, security_issues, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, rec.ID, rec.UserID, rec.Code, rec.Language, string(bugs), rec.QualityScore, string(suggestions),
		string(rec.Complexity), string(security), string(rec.Status), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	s.cache.Add(rec.ID, cloneRecord(*rec))
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id, userID string) (Record, error) {
	if s == nil {
		return Record{}, fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if cached, ok := s.cache.Get(id); ok {
		if cached.UserID != userID {
			return Record{}, ErrNotFound
		}
		return cloneRecord(cached), nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return Record{}, err
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, user_id, code, language, bugs, quality_score, suggestions, complexity, security_issues, status, created_at
FROM code_analyses WHERE id=$1 AND user_id=$2`, id, userID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	s.cache.Add(rec.ID, rec)
	return cloneRecord(rec), nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, '' AS code, language, bugs, quality_score, suggestions, complexity, security_issues, status, created_at
FROM code_analyses WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, normalizeLimit(limit))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec                         Record
		bugs, suggestions, security []byte
		complexity, status          string
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Code, &rec.Language, &bugs, &rec.QualityScore,
		&suggestions, &complexity, &security, &status, &rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	rec.Complexity = codeassist.Complexity(complexity)
	rec.Status = Status(status)
	if err := json.Unmarshal(bugs, &rec.Bugs); err != nil {
		return Record{}, fmt.Errorf("decode bugs: %w", err)
	}
	if err := json.Unmarshal(suggestions, &rec.Suggestions); err != nil {
		return Record{}, fmt.Errorf("decode suggestions: %w", err)
	}
	if err := json.Unmarshal(security, &rec.SecurityIssues); err != nil {
		return Record{}, fmt.Errorf("decode security issues: %w", err)
	}
	return cloneRecord(rec), nil
}

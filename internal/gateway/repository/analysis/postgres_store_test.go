package analysis

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeassist/internal/codeassist"
)

// openTestDB connects to CODEASSIST_TEST_DATABASE_URL or skips.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("CODEASSIST_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping postgres test. Set CODEASSIST_TEST_DATABASE_URL to run.")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(t.Context()))
	return db
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	s, err := NewPostgresStore(openTestDB(t))
	require.NoError(t, err)
	user := "pg-" + uuid.NewString()

	rec := &Record{
		UserID:   user,
		Code:     "var x == 1",
		Language: "javascript",
		AnalysisResult: codeassist.AnalysisResult{
			Bugs:           []codeassist.BugFinding{{Line: 1, Severity: "weird", Message: "m"}},
			QualityScore:   75,
			Suggestions:    []string{"s"},
			Complexity:     codeassist.ComplexityMedium,
			SecurityIssues: []string{},
		},
	}
	require.NoError(t, s.Create(t.Context(), rec))

	// Bypass the cache to read the row back.
	s.cache.Purge()
	got, err := s.Get(t.Context(), rec.ID, user)
	require.NoError(t, err)
	assert.Equal(t, rec.Code, got.Code)
	assert.Equal(t, 75, got.QualityScore)
	assert.Equal(t, codeassist.Severity("weird"), got.Bugs[0].Severity)
	assert.Equal(t, StatusCompleted, got.Status)

	_, err = s.Get(t.Context(), rec.ID, "someone-else")
	assert.True(t, errors.Is(err, ErrNotFound))

	list, err := s.ListByUser(t.Context(), user, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Code)
	assert.NoError(t, s.Ping(t.Context()))
}

func TestPostgresStoreSchemaIgnoresCancelledCaller(t *testing.T) {
	s, err := NewPostgresStore(openTestDB(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.NoError(t, s.ensureSchema(ctx))

	_, err = s.ListByUser(t.Context(), "pg-"+uuid.NewString(), 1)
	require.NoError(t, err)
}

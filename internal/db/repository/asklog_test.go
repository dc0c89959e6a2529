package repository

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "labintel/internal/db"
	"labintel/internal/domain"
)

func newTestRepo(t *testing.T) *AskLogRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewAskLogRepo(writeDB)
}

func record(question, status string) *domain.AskRecord {
	return &domain.AskRecord{
		Question:  question,
		Statement: `SELECT COUNT(*) AS row_count FROM "test"`,
		Status:    status,
		CreatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestAskLogRepo_InsertAssignsID(t *testing.T) {
	repo := newTestRepo(t)

	rec := record("How many tests?", domain.AskStatusAnswered)
	rec.RowCount = 1
	rec.Truncated = true
	rec.DurationMs = 42

	require.NoError(t, repo.Insert(context.Background(), rec))
	assert.Positive(t, rec.ID)
}

func TestAskLogRepo_ListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Insert(ctx, record(q, domain.AskStatusAnswered)))
	}

	records, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].Question)
	assert.Equal(t, "second", records[1].Question)
}

func TestAskLogRepo_RoundTripsFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := record("Which tests failed?", domain.AskStatusFailed)
	rec.FailureKind = "QueryTimeout"
	rec.Truncated = true
	rec.DurationMs = 31000
	require.NoError(t, repo.Insert(ctx, rec))

	records, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "Which tests failed?", got.Question)
	assert.Equal(t, domain.AskStatusFailed, got.Status)
	assert.Equal(t, "QueryTimeout", got.FailureKind)
	assert.True(t, got.Truncated)
	assert.EqualValues(t, 31000, got.DurationMs)
	assert.Equal(t, rec.CreatedAt, got.CreatedAt.UTC())
}

func TestAskLogRepo_ListClampsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, record("q", domain.AskStatusAnswered)))

	for _, limit := range []int{0, -5, 10_000} {
		records, err := repo.List(ctx, limit)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	}
}

func TestAskLogRepo_ListEmpty(t *testing.T) {
	repo := newTestRepo(t)
	records, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

package execute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labintel/internal/domain"
	"labintel/internal/testutil"
)

func seedTests(t *testing.T, db *sql.DB, n int) {
	t.Helper()
	reported := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := db.Exec(
			`INSERT INTO test (lab_id, patient_name, test_name, is_abnormal, reported_at) VALUES (?, ?, ?, ?, ?)`,
			"12", fmt.Sprintf("patient-%03d", i), "CBC", i%2 == 0, reported.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}
}

func listPlan() *domain.QueryPlan {
	return &domain.QueryPlan{
		Table:       "test",
		Columns:     []string{"patient_name"},
		Aggregation: domain.AggList,
	}
}

func TestExecute_ReturnsRows(t *testing.T) {
	db := testutil.OpenLabDB(t)
	seedTests(t, db, 3)
	ex := NewExecutor(db, 100, time.Second, nil)

	rs, err := ex.Execute(context.Background(), listPlan())
	require.NoError(t, err)

	assert.Equal(t, 3, rs.RowCount)
	assert.False(t, rs.Truncated)
	assert.Equal(t, []string{"patient_name"}, rs.Columns)
	assert.Equal(t, "patient-000", rs.Rows[0][0], "ordered by the projected column")
	assert.Positive(t, rs.Duration)
}

func TestExecute_ExactlyMaxRowsNotTruncated(t *testing.T) {
	db := testutil.OpenLabDB(t)
	seedTests(t, db, 5)
	ex := NewExecutor(db, 5, time.Second, nil)

	rs, err := ex.Execute(context.Background(), listPlan())
	require.NoError(t, err)
	assert.Equal(t, 5, rs.RowCount)
	assert.False(t, rs.Truncated, "a result of exactly max_rows is complete")
}

func TestExecute_TruncatesBeyondMaxRows(t *testing.T) {
	db := testutil.OpenLabDB(t)
	seedTests(t, db, 6)
	ex := NewExecutor(db, 5, time.Second, nil)

	rs, err := ex.Execute(context.Background(), listPlan())
	require.NoError(t, err)
	assert.Equal(t, 5, rs.RowCount)
	assert.True(t, rs.Truncated)
	assert.Len(t, rs.Rows, 5, "the probe row is dropped")
}

func TestExecute_CountIgnoresRowCap(t *testing.T) {
	db := testutil.OpenLabDB(t)
	seedTests(t, db, 8)
	ex := NewExecutor(db, 5, time.Second, nil)

	plan := &domain.QueryPlan{Table: "test", Aggregation: domain.AggCount}
	rs, err := ex.Execute(context.Background(), plan)
	require.NoError(t, err)

	require.Equal(t, 1, rs.RowCount)
	assert.EqualValues(t, 8, rs.Rows[0][0], "counts are computed over all rows")
	assert.False(t, rs.Truncated)
}

func TestExecute_WindowIsHalfOpen(t *testing.T) {
	db := testutil.OpenLabDB(t)
	boundary := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{boundary.Add(-time.Hour), boundary, boundary.Add(time.Hour)} {
		_, err := db.Exec(
			`INSERT INTO test (lab_id, patient_name, test_name, is_abnormal, reported_at) VALUES (?, ?, ?, 0, ?)`,
			"12", fmt.Sprintf("p%d", i), "CBC", ts)
		require.NoError(t, err)
	}
	ex := NewExecutor(db, 100, time.Second, nil)

	plan := &domain.QueryPlan{
		Table:       "test",
		Columns:     []string{"patient_name"},
		Aggregation: domain.AggList,
		Window: &domain.TimeWindow{
			Column: "reported_at",
			Start:  boundary.AddDate(0, 0, -1),
			End:    boundary,
		},
	}
	rs, err := ex.Execute(context.Background(), plan)
	require.NoError(t, err)
	require.Equal(t, 1, rs.RowCount, "the end bound is exclusive")
	assert.Equal(t, "p0", rs.Rows[0][0])
}

func TestExecute_DeadlineMapsToQueryTimeout(t *testing.T) {
	db := testutil.OpenLabDB(t)
	seedTests(t, db, 1)
	ex := NewExecutor(db, 100, time.Nanosecond, nil)

	_, err := ex.Execute(context.Background(), listPlan())
	require.Error(t, err)

	var timeout *domain.QueryTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Contains(t, err.Error(), "deadline")
}

func TestExecute_CallerCancelPassesThrough(t *testing.T) {
	db := testutil.OpenLabDB(t)
	seedTests(t, db, 1)
	ex := NewExecutor(db, 100, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ex.Execute(ctx, listPlan())
	require.ErrorIs(t, err, context.Canceled)

	var timeout *domain.QueryTimeoutError
	assert.False(t, errors.As(err, &timeout), "caller cancellation is not a pipeline timeout")
}

func TestExecute_DriverFailureMapsToDatabaseUnavailable(t *testing.T) {
	db := testutil.OpenLabDB(t)
	ex := NewExecutor(db, 100, time.Second, nil)
	require.NoError(t, db.Close())

	_, err := ex.Execute(context.Background(), listPlan())
	require.Error(t, err)

	var unavailable *domain.DatabaseUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Error(t, unavailable.Unwrap())
}

func TestStatement_RendersWithoutLiterals(t *testing.T) {
	db := testutil.OpenLabDB(t)
	ex := NewExecutor(db, 100, time.Second, nil)

	plan := listPlan()
	plan.Predicates = []domain.Predicate{{Column: "lab_id", Op: domain.OpEquals, Value: "secret-12"}}

	stmt := ex.Statement(plan)
	assert.Contains(t, stmt, `"lab_id" = ?`)
	assert.NotContains(t, stmt, "secret-12")
}

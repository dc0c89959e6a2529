package execute

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"labintel/internal/domain"
)

// Executor runs compiled plans against the lab database. Each execution
// borrows one pooled connection for its own window and releases it on every
// exit path; the pool itself is shared and read-only from here.
type Executor struct {
	db      *sql.DB
	maxRows int
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecutor creates an Executor with the given row cap and deadline.
func NewExecutor(db *sql.DB, maxRows int, timeout time.Duration, logger *slog.Logger) *Executor {
	if maxRows <= 0 {
		maxRows = 1000
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{db: db, maxRows: maxRows, timeout: timeout, logger: logger.With("component", "executor")}
}

// Execute compiles and runs the plan, returning a typed result set. The row
// cap uses a limit+1 probe: a result of exactly maxRows is complete, one row
// beyond it is dropped and the set is flagged truncated. Deadline expiry maps
// to QueryTimeout, caller cancellation propagates as-is, and anything else
// from the driver maps to DatabaseUnavailable.
func (e *Executor) Execute(ctx context.Context, plan *domain.QueryPlan) (*domain.ResultSet, error) {
	stmt, params, err := Compile(plan, e.maxRows+1)
	if err != nil {
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	rows, err := e.db.QueryContext(execCtx, stmt, params...)
	if err != nil {
		return nil, e.classify(ctx, execCtx, err)
	}
	defer rows.Close() //nolint:errcheck

	result, err := e.scan(rows)
	if err != nil {
		return nil, e.classify(ctx, execCtx, err)
	}
	result.Duration = time.Since(start)

	e.logger.Debug("plan executed",
		"rows", result.RowCount, "truncated", result.Truncated, "duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// Statement compiles the plan without executing it, for logging.
func (e *Executor) Statement(plan *domain.QueryPlan) string {
	stmt, _, err := Compile(plan, e.maxRows+1)
	if err != nil {
		return ""
	}
	return stmt
}

// scan drains rows up to the probe limit.
func (e *Executor) scan(rows *sql.Rows) (*domain.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &domain.ResultSet{Columns: cols}
	for rows.Next() {
		if result.RowCount == e.maxRows {
			// The probe row: more data exists beyond the cap.
			result.Truncated = true
			break
		}
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// classify maps an execution failure to the pipeline's error taxonomy.
func (e *Executor) classify(callerCtx, execCtx context.Context, err error) error {
	switch {
	case callerCtx.Err() != nil:
		// Caller disconnected or cancelled: not a pipeline failure kind.
		return callerCtx.Err()
	case errors.Is(execCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return domain.ErrQueryTimeout("query exceeded the %s execution deadline", e.timeout)
	default:
		return domain.ErrDatabaseUnavailable(err, "database execution failed: %v", err)
	}
}

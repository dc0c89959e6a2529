// Package repository contains database/sql repositories over the ask-log store.
package repository

import (
	"context"
	"database/sql"

	"labintel/internal/domain"
)

var _ domain.AskLogRepository = (*AskLogRepo)(nil)

// AskLogRepo persists ask records in SQLite.
type AskLogRepo struct {
	db *sql.DB
}

// NewAskLogRepo creates a new AskLogRepo.
func NewAskLogRepo(db *sql.DB) *AskLogRepo {
	return &AskLogRepo{db: db}
}

// Insert stores one ask record and fills in its ID.
func (r *AskLogRepo) Insert(ctx context.Context, rec *domain.AskRecord) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ask_log (question, statement, status, failure_kind, row_count, truncated, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Question, rec.Statement, rec.Status, rec.FailureKind,
		rec.RowCount, boolToInt(rec.Truncated), rec.DurationMs, rec.CreatedAt)
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// List returns the most recent ask records, newest first.
func (r *AskLogRepo) List(ctx context.Context, limit int) ([]domain.AskRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question, statement, status, failure_kind, row_count, truncated, duration_ms, created_at
		 FROM ask_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.AskRecord
	for rows.Next() {
		var (
			rec       domain.AskRecord
			truncated int
		)
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Statement, &rec.Status,
			&rec.FailureKind, &rec.RowCount, &truncated, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Truncated = truncated != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

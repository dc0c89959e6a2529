package app

import (
	"context"
	"database/sql"
	"fmt"

	"labintel/internal/domain"
)

// DemoHints returns the hint table matching the demo lab schema. Used when no
// HINTS_PATH is configured and the demo data is seeded.
func DemoHints() []domain.Hint {
	return []domain.Hint{
		{
			Phrase: "abnormal",
			Table:  "test",
			Column: "is_abnormal",
			Op:     domain.OpEquals,
			Value:  true,
			Note:   `"abnormal" tests are rows in the test table with is_abnormal = true`,
		},
		{
			Phrase: "abnormal",
			Table:  "parameters",
			Column: "is_abnormal",
			Op:     domain.OpEquals,
			Value:  true,
			Note:   `"abnormal" parameters are rows in the parameters table with is_abnormal = true`,
		},
		{
			Phrase: "lab",
			Table:  "test",
			Column: "lab_id",
			Op:     domain.OpEquals,
			Note:   `lab numbers ("Lab 12") are stored as text in the lab_id column`,
		},
	}
}

// SeedDemoLab creates the demo lab schema and a small data set in the lab
// database. Used for development against an in-memory database; idempotent,
// it checks whether the schema already exists.
func SeedDemoLab(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'lab_center'`).Scan(&n); err == nil && n > 0 {
		return nil // already seeded
	}

	statements := []string{
		`CREATE TABLE org (
			org_id INTEGER PRIMARY KEY,
			org_name VARCHAR NOT NULL
		)`,
		`CREATE TABLE lab_center (
			lab_center_id INTEGER PRIMARY KEY,
			org_id INTEGER NOT NULL,
			lab_id VARCHAR NOT NULL,
			lab_center_name VARCHAR NOT NULL
		)`,
		`CREATE TABLE report_details (
			report_id INTEGER PRIMARY KEY,
			org_id INTEGER NOT NULL,
			lab_center_id INTEGER NOT NULL,
			age_years INTEGER,
			gender VARCHAR,
			bill_date TIMESTAMP NOT NULL,
			bill_id VARCHAR NOT NULL,
			package_name VARCHAR
		)`,
		`CREATE TABLE test (
			test_id INTEGER PRIMARY KEY,
			org_id INTEGER NOT NULL,
			lab_center_id INTEGER NOT NULL,
			report_id INTEGER NOT NULL,
			lab_id VARCHAR NOT NULL,
			test_name VARCHAR NOT NULL,
			test_date TIMESTAMP NOT NULL,
			total_parameter_count INTEGER,
			abnormal_parameter_count INTEGER,
			is_abnormal BOOLEAN NOT NULL
		)`,
		`CREATE TABLE parameters (
			parameter_id INTEGER PRIMARY KEY,
			test_id INTEGER NOT NULL,
			report_id INTEGER NOT NULL,
			parameter_name VARCHAR NOT NULL,
			parameter_value VARCHAR,
			min_value VARCHAR,
			max_value VARCHAR,
			unit VARCHAR,
			is_abnormal BOOLEAN NOT NULL
		)`,

		`INSERT INTO org VALUES (1, 'Demo Diagnostics')`,
		`INSERT INTO lab_center VALUES
			(1, 1, '12', 'Central Lab'),
			(2, 1, '15', 'North Lab')`,
		`INSERT INTO report_details VALUES
			(1, 1, 1, 34, 'Female', now() - INTERVAL 1 DAY, 'B-1001', 'Basic Panel'),
			(2, 1, 1, 57, 'Male', now() - INTERVAL 1 DAY, 'B-1002', 'Full Panel'),
			(3, 1, 2, 41, 'Male', now() - INTERVAL 10 DAY, 'B-1003', 'Basic Panel')`,
		`INSERT INTO test VALUES
			(1, 1, 1, 1, '12', 'Complete Blood Count', now() - INTERVAL 1 DAY, 20, 2, true),
			(2, 1, 1, 1, '12', 'Lipid Profile', now() - INTERVAL 1 DAY, 8, 0, false),
			(3, 1, 1, 2, '12', 'Liver Function Test', now() - INTERVAL 1 DAY, 11, 3, true),
			(4, 1, 2, 3, '15', 'Thyroid Panel', now() - INTERVAL 10 DAY, 5, 0, false)`,
		`INSERT INTO parameters VALUES
			(1, 1, 1, 'Hemoglobin', '10.2', '12.0', '15.5', 'g/dL', true),
			(2, 1, 1, 'WBC Count', '7.1', '4.0', '11.0', 'K/uL', false),
			(3, 3, 2, 'ALT', '68', '7', '56', 'U/L', true)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed demo lab: %w", err)
		}
	}
	return nil
}

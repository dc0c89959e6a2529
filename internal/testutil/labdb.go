package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// labSchema mirrors the demo lab schema on SQLite for tests that need a real
// queryable database.
const labSchema = `
CREATE TABLE org (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE lab_center (
	id          INTEGER PRIMARY KEY,
	org_id      INTEGER NOT NULL,
	center_name TEXT NOT NULL,
	city        TEXT
);
CREATE TABLE test (
	id           INTEGER PRIMARY KEY,
	lab_id       TEXT NOT NULL,
	patient_name TEXT NOT NULL,
	test_name    TEXT NOT NULL,
	is_abnormal  BOOLEAN NOT NULL DEFAULT 0,
	reported_at  TIMESTAMP NOT NULL
);
CREATE TABLE parameters (
	id             INTEGER PRIMARY KEY,
	test_id        INTEGER NOT NULL,
	parameter_name TEXT NOT NULL,
	value          REAL,
	unit           TEXT,
	is_abnormal    BOOLEAN NOT NULL DEFAULT 0
);
`

// OpenLabDB opens an in-memory SQLite database with the lab schema and
// registers cleanup. The pool is pinned to one connection because each
// :memory: connection is its own database.
func OpenLabDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open lab db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(labSchema); err != nil {
		t.Fatalf("create lab schema: %v", err)
	}
	return db
}

package app

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labintel/internal/config"
	internaldb "labintel/internal/db"
	"labintel/internal/domain"
	"labintel/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		LabDBDriver:       "sqlite3",
		LabDBDSN:          "file:app_test?mode=memory",
		MaxRepairAttempts: 1,
		MaxRows:           100,
	}
}

func TestNew_WiresPipeline(t *testing.T) {
	labDB := testutil.OpenLabDB(t)
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	gen := &testutil.MockGenerator{Responses: []string{
		`{"table":"test","aggregation":"count"}`,
		"No tests have been recorded yet.",
	}}

	a, err := New(context.Background(), Deps{
		Cfg:         testConfig(),
		LabDB:       labDB,
		AskLogWrite: writeDB,
		AskLogRead:  readDB,
		Generator:   gen,
	})
	require.NoError(t, err)
	require.NotNil(t, a.Catalog)
	require.NotNil(t, a.Ask)
	require.NotNil(t, a.AskLog)

	answer, err := a.Ask.Ask(context.Background(), "How many tests?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Text)

	records, err := a.AskLog.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1, "the ask was logged through the write pool")
	assert.Equal(t, domain.AskStatusAnswered, records[0].Status)
}

func TestNew_NilAskLogPoolsDisableHistory(t *testing.T) {
	labDB := testutil.OpenLabDB(t)

	a, err := New(context.Background(), Deps{
		Cfg:       testConfig(),
		LabDB:     labDB,
		Generator: &testutil.MockGenerator{Responses: []string{`{"table":"test","aggregation":"count"}`}},
	})
	require.NoError(t, err)
	assert.Nil(t, a.AskLog)

	_, err = a.Ask.Ask(context.Background(), "How many tests?")
	require.NoError(t, err)
}

func TestNew_EmptyDatabaseIsCatalogUnavailable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = New(context.Background(), Deps{Cfg: testConfig(), LabDB: db})
	require.Error(t, err)

	var catErr *domain.CatalogUnavailableError
	assert.ErrorAs(t, err, &catErr)
}

func TestNew_DemoHintsApplyWhenSeeding(t *testing.T) {
	labDB := testutil.OpenLabDB(t)
	cfg := testConfig()
	cfg.LabDBDSN = "" // empty DSN means demo mode

	a, err := New(context.Background(), Deps{
		Cfg:   cfg,
		LabDB: labDB,
		Generator: &testutil.MockGenerator{Responses: []string{
			`{"table":"test","filters":[{"column":"abnormal","op":"eq","value":true}],"aggregation":"count"}`,
			"No abnormal tests were found.",
		}},
	})
	require.NoError(t, err)

	_, err = a.Ask.Ask(context.Background(), "How many abnormal tests?")
	require.NoError(t, err, "the built-in demo hints resolve the shorthand")
}

func TestDemoHints_MatchDemoSchema(t *testing.T) {
	for _, h := range DemoHints() {
		assert.NotEmpty(t, h.Phrase)
		assert.NotEmpty(t, h.Table)
		assert.NotEmpty(t, h.Column)
		assert.True(t, domain.ValidOperator(h.Op), string(h.Op))
	}
}

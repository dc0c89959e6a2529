package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labintel/internal/domain"
)

func writeHints(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadHints(t *testing.T) {
	path := writeHints(t, `
hints:
  - phrase: abnormal
    table: test
    column: is_abnormal
    op: eq
    value: true
    note: abnormal tests have is_abnormal = true
  - phrase: lab
    table: test
    column: lab_id
`)
	hints, err := LoadHints(path)
	require.NoError(t, err)
	require.Len(t, hints, 2)

	assert.Equal(t, "abnormal", hints[0].Phrase)
	assert.Equal(t, true, hints[0].Value)
	assert.Equal(t, domain.OpEquals, hints[1].Op, "op defaults to eq")
	assert.Nil(t, hints[1].Value, "value is optional")
}

func TestLoadHints_EmptyPath(t *testing.T) {
	hints, err := LoadHints("")
	require.NoError(t, err)
	assert.Nil(t, hints)
}

func TestLoadHints_MissingFile(t *testing.T) {
	hints, err := LoadHints(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, hints)
}

func TestLoadHints_InvalidYAML(t *testing.T) {
	path := writeHints(t, "hints: [")
	_, err := LoadHints(path)
	require.Error(t, err)
}

func TestLoadHints_MissingRequiredFields(t *testing.T) {
	path := writeHints(t, `
hints:
  - phrase: abnormal
    table: test
`)
	_, err := LoadHints(path)
	require.Error(t, err)
}

func TestLoadHints_BadOperator(t *testing.T) {
	path := writeHints(t, `
hints:
  - phrase: abnormal
    table: test
    column: is_abnormal
    op: like
`)
	_, err := LoadHints(path)
	require.Error(t, err)
}

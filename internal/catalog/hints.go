package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"labintel/internal/domain"
)

// hintsFile is the on-disk shape of the hint table.
type hintsFile struct {
	Hints []domain.Hint `yaml:"hints"`
}

// LoadHints reads the YAML hint table at path. A missing file is not an
// error: it yields an empty hint table and every shorthand phrase must then
// resolve to exactly one column or fail as ambiguous.
func LoadHints(path string) ([]domain.Hint, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read hints %s: %w", path, err)
	}
	var f hintsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse hints %s: %w", path, err)
	}
	for i, h := range f.Hints {
		if h.Phrase == "" || h.Table == "" || h.Column == "" {
			return nil, fmt.Errorf("hint %d in %s: phrase, table and column are required", i, path)
		}
		if h.Op == "" {
			f.Hints[i].Op = domain.OpEquals
		} else if !domain.ValidOperator(h.Op) {
			return nil, fmt.Errorf("hint %d in %s: operator %q is not allowed", i, path, h.Op)
		}
	}
	return f.Hints, nil
}

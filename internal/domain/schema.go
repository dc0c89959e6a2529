package domain

import "strings"

// SemanticType classifies a column for literal type-checking and time-window
// resolution. Database-native type names are normalized into one of these at
// catalog load.
type SemanticType string

// Semantic column types.
const (
	TypeText      SemanticType = "text"
	TypeInteger   SemanticType = "integer"
	TypeFloat     SemanticType = "float"
	TypeBoolean   SemanticType = "boolean"
	TypeTimestamp SemanticType = "timestamp"
)

// ColumnDescriptor describes one column of a queryable table.
type ColumnDescriptor struct {
	Name     string
	Type     SemanticType
	Nullable bool
}

// SchemaDescriptor describes one queryable table. Immutable after catalog
// load; safe for concurrent reads.
type SchemaDescriptor struct {
	Table   string
	Columns []ColumnDescriptor
}

// Column returns the descriptor for the named column, matching
// case-insensitively.
func (d *SchemaDescriptor) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range d.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// Hint maps a domain shorthand phrase ("abnormal") to a concrete filter on a
// catalog column. Hints are the deterministic disambiguation mechanism: a
// phrase with a hint never falls through to fuzzy column matching.
type Hint struct {
	Phrase string      `yaml:"phrase"`
	Table  string      `yaml:"table"`
	Column string      `yaml:"column"`
	Op     Operator    `yaml:"op"`
	Value  interface{} `yaml:"value"`
	// Note is included in the prompt context so the model applies the
	// mapping itself when possible.
	Note string `yaml:"note"`
}

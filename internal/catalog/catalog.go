// Package catalog introspects the lab database once at startup and serves an
// immutable description of its tables to the rest of the pipeline.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"labintel/internal/domain"
)

// Catalog holds the schema descriptors and the hint table. It is loaded once
// at startup and never mutated afterwards; concurrent reads are safe.
type Catalog struct {
	tables []domain.SchemaDescriptor
	hints  []domain.Hint
}

// Load introspects the database through the given pool and returns a catalog.
// driver selects the introspection dialect ("duckdb" or "sqlite3"). A failure
// here is fatal to startup, surfaced as CatalogUnavailable.
func Load(ctx context.Context, db *sql.DB, driver string, hints []domain.Hint) (*Catalog, error) {
	var (
		tables []domain.SchemaDescriptor
		err    error
	)
	switch driver {
	case "sqlite3":
		tables, err = introspectSQLite(ctx, db)
	case "duckdb":
		tables, err = introspectDuckDB(ctx, db)
	default:
		return nil, domain.ErrCatalogUnavailable(nil, "unsupported driver %q", driver)
	}
	if err != nil {
		return nil, domain.ErrCatalogUnavailable(err, "schema introspection failed: %v", err)
	}
	if len(tables) == 0 {
		return nil, domain.ErrCatalogUnavailable(nil, "database contains no queryable tables")
	}
	return &Catalog{tables: tables, hints: hints}, nil
}

// Describe returns the ordered schema descriptors. Pure and deterministic.
func (c *Catalog) Describe() []domain.SchemaDescriptor {
	out := make([]domain.SchemaDescriptor, len(c.tables))
	copy(out, c.tables)
	return out
}

// Table returns the descriptor for the named table, matched case-insensitively.
func (c *Catalog) Table(name string) (*domain.SchemaDescriptor, bool) {
	for i := range c.tables {
		if strings.EqualFold(c.tables[i].Table, name) {
			return &c.tables[i], true
		}
	}
	return nil, false
}

// HintFor returns the hint bound to phrase on table, if any. Matching is
// case-insensitive and exact on both, so the same phrase can carry a
// different meaning per table.
func (c *Catalog) HintFor(table, phrase string) (domain.Hint, bool) {
	for _, h := range c.hints {
		if strings.EqualFold(h.Table, table) && strings.EqualFold(h.Phrase, phrase) {
			return h, true
		}
	}
	return domain.Hint{}, false
}

// MatchColumns returns the columns of table whose names contain term as a
// substring (case-insensitive), sorted for determinism. Used to classify an
// unknown column reference as resolvable, ambiguous, or nonexistent.
func (c *Catalog) MatchColumns(table, term string) []string {
	desc, ok := c.Table(table)
	if !ok {
		return nil
	}
	term = strings.ToLower(term)
	var out []string
	for _, col := range desc.Columns {
		if strings.Contains(strings.ToLower(col.Name), term) {
			out = append(out, col.Name)
		}
	}
	sort.Strings(out)
	return out
}

// PromptContext renders the schema block embedded into translation prompts:
// every table with its columns and semantic types, followed by hint notes.
func (c *Catalog) PromptContext() string {
	var b strings.Builder
	b.WriteString("Database schema for the lab intelligence system:\n")
	for _, t := range c.tables {
		fmt.Fprintf(&b, "\nTable: %s\n", t.Table)
		for _, col := range t.Columns {
			nullable := ""
			if col.Nullable {
				nullable = ", nullable"
			}
			fmt.Fprintf(&b, "  - %s (%s%s)\n", col.Name, col.Type, nullable)
		}
	}
	if len(c.hints) > 0 {
		b.WriteString("\nNotes:\n")
		for _, h := range c.hints {
			if h.Note != "" {
				fmt.Fprintf(&b, "- %s\n", h.Note)
				continue
			}
			fmt.Fprintf(&b, "- %q maps to %s.%s %s %v\n", h.Phrase, h.Table, h.Column, h.Op, h.Value)
		}
	}
	return b.String()
}

func introspectSQLite(ctx context.Context, db *sql.DB) ([]domain.SchemaDescriptor, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var tables []domain.SchemaDescriptor
	for _, name := range names {
		// Table names come from sqlite_master, not from user input.
		cols, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, name))
		if err != nil {
			return nil, fmt.Errorf("table_info %s: %w", name, err)
		}
		desc := domain.SchemaDescriptor{Table: name}
		for cols.Next() {
			var (
				cid     int
				colName string
				colType string
				notNull int
				dflt    sql.NullString
				pk      int
			)
			if err := cols.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
				cols.Close() //nolint:errcheck,gosec
				return nil, err
			}
			desc.Columns = append(desc.Columns, domain.ColumnDescriptor{
				Name:     colName,
				Type:     normalizeType(colType),
				Nullable: notNull == 0,
			})
		}
		if err := cols.Err(); err != nil {
			cols.Close() //nolint:errcheck,gosec
			return nil, err
		}
		cols.Close() //nolint:errcheck,gosec
		tables = append(tables, desc)
	}
	return tables, nil
}

func introspectDuckDB(ctx context.Context, db *sql.DB) ([]domain.SchemaDescriptor, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT table_name, column_name, data_type, is_nullable
		 FROM information_schema.columns
		 WHERE table_schema = 'main'
		 ORDER BY table_name, ordinal_position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var (
		tables  []domain.SchemaDescriptor
		current *domain.SchemaDescriptor
	)
	for rows.Next() {
		var tableName, colName, colType, nullable string
		if err := rows.Scan(&tableName, &colName, &colType, &nullable); err != nil {
			return nil, err
		}
		if current == nil || current.Table != tableName {
			tables = append(tables, domain.SchemaDescriptor{Table: tableName})
			current = &tables[len(tables)-1]
		}
		current.Columns = append(current.Columns, domain.ColumnDescriptor{
			Name:     colName,
			Type:     normalizeType(colType),
			Nullable: strings.EqualFold(nullable, "YES"),
		})
	}
	return tables, rows.Err()
}

// normalizeType maps database-native type names to semantic types.
func normalizeType(dbType string) domain.SemanticType {
	t := strings.ToUpper(dbType)
	switch {
	case strings.Contains(t, "BOOL"):
		return domain.TypeBoolean
	case strings.Contains(t, "INT"):
		return domain.TypeInteger
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"),
		strings.Contains(t, "DOUB"), strings.Contains(t, "DECIMAL"),
		strings.Contains(t, "NUMERIC"):
		return domain.TypeFloat
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return domain.TypeTimestamp
	default:
		return domain.TypeText
	}
}

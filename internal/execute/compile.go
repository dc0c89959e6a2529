// Package execute compiles validated query plans to parameterized SQL and
// runs them with bounded time and row limits.
package execute

import (
	"fmt"
	"strings"

	"labintel/internal/domain"
)

// Compile converts a validated plan into a single parameterized SELECT.
// Every literal, including the row limit, is bound as a parameter; only
// catalog-validated identifiers appear in the statement text. This is the
// sole injection-safety boundary and holds regardless of what the translator
// validated upstream.
//
// List results always carry an ORDER BY on the first projected column so that
// repeated executions of the same plan return rows in the same order.
func Compile(plan *domain.QueryPlan, limit int) (string, []interface{}, error) {
	if err := plan.Validate(); err != nil {
		return "", nil, err
	}

	var (
		b      strings.Builder
		params []interface{}
	)

	switch plan.Aggregation {
	case domain.AggCount:
		fmt.Fprintf(&b, "SELECT COUNT(*) AS row_count FROM %s", quoteIdent(plan.Table))
	default:
		projection := "*"
		if len(plan.Columns) > 0 {
			quoted := make([]string, len(plan.Columns))
			for i, c := range plan.Columns {
				quoted[i] = quoteIdent(c)
			}
			projection = strings.Join(quoted, ", ")
		}
		fmt.Fprintf(&b, "SELECT %s FROM %s", projection, quoteIdent(plan.Table))
	}

	var clauses []string
	for _, pred := range plan.Predicates {
		clause, values, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		params = append(params, values...)
	}
	if w := plan.Window; w != nil {
		clauses = append(clauses, fmt.Sprintf("%s >= ? AND %s < ?", quoteIdent(w.Column), quoteIdent(w.Column)))
		params = append(params, w.Start, w.End)
	}
	if len(clauses) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
	}

	if plan.Aggregation != domain.AggCount {
		orderCol := "1"
		if len(plan.Columns) > 0 {
			orderCol = quoteIdent(plan.Columns[0])
		}
		fmt.Fprintf(&b, " ORDER BY %s", orderCol)
		b.WriteString(" LIMIT ?")
		params = append(params, limit)
	}

	return b.String(), params, nil
}

// compilePredicate renders one predicate as a WHERE fragment with ? markers.
func compilePredicate(pred domain.Predicate) (string, []interface{}, error) {
	col := quoteIdent(pred.Column)
	switch pred.Op {
	case domain.OpEquals:
		return col + " = ?", []interface{}{pred.Value}, nil
	case domain.OpNotEquals:
		return col + " <> ?", []interface{}{pred.Value}, nil
	case domain.OpGreater:
		return col + " > ?", []interface{}{pred.Value}, nil
	case domain.OpLess:
		return col + " < ?", []interface{}{pred.Value}, nil
	case domain.OpBetween:
		return col + " BETWEEN ? AND ?", []interface{}{pred.Low, pred.High}, nil
	case domain.OpContains:
		s, ok := pred.Value.(string)
		if !ok {
			return "", nil, domain.ErrValidation("contains filter on %q needs a string value", pred.Column)
		}
		return col + ` LIKE ? ESCAPE '\'`, []interface{}{"%" + escapeLike(s) + "%"}, nil
	case domain.OpIn:
		markers := strings.TrimSuffix(strings.Repeat("?, ", len(pred.Values)), ", ")
		return col + " IN (" + markers + ")", pred.Values, nil
	}
	return "", nil, domain.ErrValidation("operator %q on column %q is not allowed", pred.Op, pred.Column)
}

// quoteIdent double-quotes an identifier, doubling embedded quotes. Plans
// only reach compilation with catalog-verified names, so this is belt and
// braces for identifiers, never a substitute for value parameterization.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// escapeLike escapes LIKE wildcards in a user-supplied substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

package translate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"labintel/internal/domain"
)

// resolve validates a candidate against the catalog and produces the final
// plan: known table, known typed columns, whitelisted operators, coerced
// literals, and a concrete UTC time window.
func (t *Translator) resolve(cand *candidate, asOf time.Time) (*domain.QueryPlan, error) {
	desc, ok := t.cat.Table(cand.Table)
	if !ok {
		return nil, fmt.Errorf("table %q does not exist in the schema", cand.Table)
	}

	plan := &domain.QueryPlan{
		Table:       desc.Table,
		Aggregation: domain.Aggregation(cand.Aggregation),
	}
	if cand.Aggregation == "" {
		plan.Aggregation = domain.AggList
	}

	for _, name := range cand.Columns {
		col, ok := desc.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q does not exist in table %q", name, desc.Table)
		}
		plan.Columns = append(plan.Columns, col.Name)
	}

	for _, f := range cand.Filters {
		pred, err := t.resolveFilter(desc, f)
		if err != nil {
			return nil, err
		}
		plan.Predicates = append(plan.Predicates, pred)
	}

	if cand.Time != nil {
		col, ok := desc.Column(cand.Time.Column)
		if !ok {
			return nil, fmt.Errorf("time column %q does not exist in table %q", cand.Time.Column, desc.Table)
		}
		if col.Type != domain.TypeTimestamp {
			return nil, fmt.Errorf("time column %q is %s, not a timestamp", col.Name, col.Type)
		}
		window, err := resolveWindow(col.Name, cand.Time.Expression, cand.Time.Start, cand.Time.End, asOf)
		if err != nil {
			return nil, err
		}
		plan.Window = window
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// resolveFilter maps one candidate filter onto a catalog column. An unknown
// column name is treated as a shorthand phrase: a hint resolves it outright,
// a unique substring match resolves it, multiple matches without a hint are
// ambiguous, and no match at all is a repairable validation error.
func (t *Translator) resolveFilter(desc *domain.SchemaDescriptor, f candFilter) (domain.Predicate, error) {
	op := domain.Operator(strings.ToLower(f.Op))
	if !domain.ValidOperator(op) {
		return domain.Predicate{}, fmt.Errorf("operator %q on %q is not in the allowed set", f.Op, f.Column)
	}

	col, ok := desc.Column(f.Column)
	if !ok {
		if hint, found := t.cat.HintFor(desc.Table, f.Column); found {
			hintCol, ok := desc.Column(hint.Column)
			if !ok {
				return domain.Predicate{}, fmt.Errorf("hint for %q names missing column %q", f.Column, hint.Column)
			}
			// A hint without a fixed value only rebinds the column; the
			// filter's own value applies.
			raw := hint.Value
			if raw == nil {
				raw = f.Value
			}
			value, err := coerceLiteral(raw, hintCol)
			if err != nil {
				return domain.Predicate{}, fmt.Errorf("hint for %q: %v", f.Column, err)
			}
			return domain.Predicate{Column: hintCol.Name, Op: hint.Op, Value: value}, nil
		}

		matches := t.cat.MatchColumns(desc.Table, f.Column)
		switch len(matches) {
		case 0:
			return domain.Predicate{}, fmt.Errorf("column %q does not exist in table %q", f.Column, desc.Table)
		case 1:
			col, _ = desc.Column(matches[0])
		default:
			return domain.Predicate{}, domain.ErrAmbiguousQuery(
				"%q could map to any of %s in table %q and no hint disambiguates it",
				f.Column, strings.Join(matches, ", "), desc.Table)
		}
	}

	if op == domain.OpContains && col.Type != domain.TypeText {
		return domain.Predicate{}, fmt.Errorf("contains filter needs a text column, %q is %s", col.Name, col.Type)
	}

	pred := domain.Predicate{Column: col.Name, Op: op}
	var err error
	switch op {
	case domain.OpBetween:
		if pred.Low, err = coerceLiteral(f.Low, col); err != nil {
			return domain.Predicate{}, fmt.Errorf("between low on %q: %v", col.Name, err)
		}
		if pred.High, err = coerceLiteral(f.High, col); err != nil {
			return domain.Predicate{}, fmt.Errorf("between high on %q: %v", col.Name, err)
		}
	case domain.OpIn:
		if len(f.Values) == 0 {
			return domain.Predicate{}, fmt.Errorf("in filter on %q has no values", col.Name)
		}
		for _, v := range f.Values {
			coerced, err := coerceLiteral(v, col)
			if err != nil {
				return domain.Predicate{}, fmt.Errorf("in value on %q: %v", col.Name, err)
			}
			pred.Values = append(pred.Values, coerced)
		}
	default:
		if pred.Value, err = coerceLiteral(f.Value, col); err != nil {
			return domain.Predicate{}, fmt.Errorf("value on %q: %v", col.Name, err)
		}
	}
	return pred, nil
}

// coerceLiteral converts a JSON-decoded literal into the Go type matching the
// column's semantic type, or reports a type mismatch. String forms of
// numbers and booleans are accepted because models emit them freely.
func coerceLiteral(v interface{}, col domain.ColumnDescriptor) (interface{}, error) {
	if v == nil {
		return nil, fmt.Errorf("missing value")
	}
	switch col.Type {
	case domain.TypeInteger:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%v is not an integer", n)
			}
			return int64(n), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", n)
			}
			return i, nil
		}
	case domain.TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number", n)
			}
			return f, nil
		}
	case domain.TypeBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(b)))
			if err != nil {
				return nil, fmt.Errorf("%q is not a boolean", b)
			}
			return parsed, nil
		}
	case domain.TypeTimestamp:
		if s, ok := v.(string); ok {
			ts, _, err := parseDate(s)
			if err != nil {
				return nil, err
			}
			return ts, nil
		}
	case domain.TypeText:
		if s, ok := v.(string); ok {
			return s, nil
		}
		// Numbers against text columns are stringified: lab identifiers are
		// stored as text but asked about as numbers ("Lab 12").
		if n, ok := v.(float64); ok {
			if n == math.Trunc(n) {
				return strconv.FormatInt(int64(n), 10), nil
			}
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		}
	}
	return nil, fmt.Errorf("value %v is not compatible with %s column", v, col.Type)
}

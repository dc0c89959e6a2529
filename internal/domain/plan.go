package domain

import (
	"fmt"
	"time"
)

// Operator is a filter comparison operator. Only operators in this closed set
// survive plan validation.
type Operator string

// Allowed filter operators.
const (
	OpEquals    Operator = "eq"
	OpNotEquals Operator = "neq"
	OpGreater   Operator = "gt"
	OpLess      Operator = "lt"
	OpBetween   Operator = "between"
	OpContains  Operator = "contains"
	OpIn        Operator = "in"
)

// ValidOperator reports whether op is in the allowed set.
func ValidOperator(op Operator) bool {
	switch op {
	case OpEquals, OpNotEquals, OpGreater, OpLess, OpBetween, OpContains, OpIn:
		return true
	}
	return false
}

// Aggregation selects the result shape of a plan.
type Aggregation string

// Supported aggregations.
const (
	AggNone  Aggregation = "none"
	AggCount Aggregation = "count"
	AggList  Aggregation = "list"
)

// Predicate is one validated filter: column, operator, and typed operand(s).
// Exactly one of Value, (Low, High), or Values is populated depending on the
// operator. Operands are data, never SQL text.
type Predicate struct {
	Column string        `json:"column"`
	Op     Operator      `json:"op"`
	Value  interface{}   `json:"value,omitempty"`
	Low    interface{}   `json:"low,omitempty"`
	High   interface{}   `json:"high,omitempty"`
	Values []interface{} `json:"values,omitempty"`
}

// TimeWindow is a resolved half-open UTC interval [Start, End) on a timestamp
// column. Relative expressions ("yesterday") are resolved at translation
// time, anchored to the request's arrival time, never at execution time.
type TimeWindow struct {
	Column string    `json:"column"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// QueryPlan is the validated intermediate representation produced by the
// translator and consumed by the executor. It references catalog tables and
// columns by name and carries no raw SQL fragments.
type QueryPlan struct {
	Table       string      `json:"table"`
	Columns     []string    `json:"columns,omitempty"`
	Predicates  []Predicate `json:"filters,omitempty"`
	Aggregation Aggregation `json:"aggregation"`
	Window      *TimeWindow `json:"window,omitempty"`
}

// Validate checks the plan's internal shape: table present, known operators,
// operand arity matching each operator, and a resolved (non-relative) time
// window. Column existence and literal typing are checked against the catalog
// by the translator, which has the schema at hand.
func (p *QueryPlan) Validate() error {
	if p.Table == "" {
		return ErrValidation("plan has no target table")
	}
	switch p.Aggregation {
	case AggNone, AggCount, AggList:
	default:
		return ErrValidation("unknown aggregation %q", p.Aggregation)
	}
	for i := range p.Predicates {
		if err := p.Predicates[i].validate(); err != nil {
			return err
		}
	}
	if w := p.Window; w != nil {
		if w.Column == "" {
			return ErrValidation("time window has no column")
		}
		if w.Start.IsZero() || w.End.IsZero() {
			return ErrValidation("time window on %q is unresolved", w.Column)
		}
		if !w.End.After(w.Start) {
			return ErrValidation("time window on %q is empty", w.Column)
		}
	}
	return nil
}

func (pr *Predicate) validate() error {
	if pr.Column == "" {
		return ErrValidation("filter has no column")
	}
	if !ValidOperator(pr.Op) {
		return ErrValidation("operator %q on column %q is not allowed", pr.Op, pr.Column)
	}
	switch pr.Op {
	case OpBetween:
		if pr.Low == nil || pr.High == nil {
			return ErrValidation("between filter on %q needs low and high", pr.Column)
		}
	case OpIn:
		if len(pr.Values) == 0 {
			return ErrValidation("in filter on %q needs at least one value", pr.Column)
		}
	default:
		if pr.Value == nil {
			return ErrValidation("%s filter on %q has no value", pr.Op, pr.Column)
		}
	}
	return nil
}

// String renders a compact human-readable form used in logs and the ask log.
func (p *QueryPlan) String() string {
	s := fmt.Sprintf("%s(%s)", p.Aggregation, p.Table)
	for _, pr := range p.Predicates {
		s += fmt.Sprintf(" %s %s ?", pr.Column, pr.Op)
	}
	if p.Window != nil {
		s += fmt.Sprintf(" %s in [%s, %s)", p.Window.Column,
			p.Window.Start.Format(time.RFC3339), p.Window.End.Format(time.RFC3339))
	}
	return s
}

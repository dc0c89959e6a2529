package domain

import "time"

// ResultSet is the typed output of plan execution: an ordered sequence of
// rows plus row count and the truncation flag. It is consumed only by the
// answer composer and never fed back into translation.
type ResultSet struct {
	Columns   []string
	Rows      [][]interface{}
	RowCount  int
	Truncated bool
	Duration  time.Duration
}

// Empty reports whether the result set contains no rows.
func (r *ResultSet) Empty() bool { return r.RowCount == 0 }

// Answer is the final response for one question. Table is nil when the
// summary alone carries the answer; Text is always set.
type Answer struct {
	Text      string
	Table     *AnswerTable
	RowCount  int
	Truncated bool
}

// AnswerTable is a tabular rendering of a result set, pre-stringified for
// transport.
type AnswerTable struct {
	Columns []string
	Rows    [][]string
}

// Package compose turns result sets into natural-language answers, degrading
// to a tabular rendering whenever summarization is unnecessary or fails.
package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"labintel/internal/domain"
)

// NoMatchAnswer is the deterministic text returned for empty result sets.
// Chosen once so tests and callers can rely on it; no model call is made.
const NoMatchAnswer = "No matching records were found for your question."

// Composer produces the final Answer for a request.
type Composer struct {
	gen            domain.Generator
	maxSummaryRows int
	logger         *slog.Logger
}

// NewComposer creates a Composer. maxSummaryRows bounds how many rows are
// serialized into the summarization prompt; larger sets skip the model and
// degrade to a tabular answer.
func NewComposer(gen domain.Generator, maxSummaryRows int, logger *slog.Logger) *Composer {
	if maxSummaryRows <= 0 {
		maxSummaryRows = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{gen: gen, maxSummaryRows: maxSummaryRows, logger: logger.With("component", "composer")}
}

// Compose builds the answer for the question from the executed result set.
// Summarization is best-effort: its failure degrades the answer, never the
// request.
func (c *Composer) Compose(ctx context.Context, question string, rs *domain.ResultSet) *domain.Answer {
	if rs.Empty() {
		return &domain.Answer{Text: NoMatchAnswer}
	}

	answer := &domain.Answer{
		Table:     tableFromResult(rs),
		RowCount:  rs.RowCount,
		Truncated: rs.Truncated,
	}

	if rs.RowCount > c.maxSummaryRows {
		answer.Text = c.abbreviatedText(rs)
		return answer
	}

	rowsJSON, err := serializeRows(rs)
	if err != nil {
		c.logger.Warn("result serialization failed, using tabular answer", "error", err)
		answer.Text = c.tabularText(rs)
		return answer
	}

	summary, err := c.gen.Generate(ctx, buildSummaryPrompt(question, rs, rowsJSON))
	if err != nil || strings.TrimSpace(summary) == "" {
		c.logger.Warn("summarization failed, using tabular answer", "error", err)
		answer.Text = c.tabularText(rs)
		return answer
	}

	answer.Text = strings.TrimSpace(summary)
	return answer
}

// abbreviatedText is the deterministic answer for sets too large to summarize.
func (c *Composer) abbreviatedText(rs *domain.ResultSet) string {
	text := fmt.Sprintf("Found %d matching records; the results below are abbreviated.", rs.RowCount)
	if rs.Truncated {
		text = fmt.Sprintf("Found more than %d matching records; the results below are capped and abbreviated.", rs.RowCount)
	}
	return text
}

// tabularText is the deterministic answer used when summarization fails.
func (c *Composer) tabularText(rs *domain.ResultSet) string {
	noun := "records"
	if rs.RowCount == 1 {
		noun = "record"
	}
	return fmt.Sprintf("Found %d matching %s; see the table below.", rs.RowCount, noun)
}

// buildSummaryPrompt frames the bounded serialization for the model.
func buildSummaryPrompt(question string, rs *domain.ResultSet, rowsJSON string) string {
	var b strings.Builder
	b.WriteString("You are presenting laboratory database results to a non-technical user.\n")
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "Result columns: %s\n", strings.Join(rs.Columns, ", "))
	fmt.Fprintf(&b, "Result rows (%d total", rs.RowCount)
	if rs.Truncated {
		b.WriteString(", capped by the row limit")
	}
	b.WriteString("):\n")
	b.WriteString(rowsJSON)
	b.WriteString("\n\nAnswer the question in two or three plain sentences based only on these rows. Do not invent values.\n")
	return b.String()
}

// serializeRows renders the rows as a JSON array of column→value objects.
func serializeRows(rs *domain.ResultSet) (string, error) {
	out := make([]map[string]string, len(rs.Rows))
	for i, row := range rs.Rows {
		obj := make(map[string]string, len(rs.Columns))
		for j, col := range rs.Columns {
			obj[col] = formatValue(row[j])
		}
		out[i] = obj
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

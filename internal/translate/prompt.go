package translate

import (
	"fmt"
	"strings"
	"time"
)

// buildPrompt assembles the translation prompt: task framing, the catalog's
// schema context, the output contract, the question, and any validation
// feedback from earlier repair attempts.
func buildPrompt(schemaContext, question string, asOf time.Time, feedback []string) string {
	var b strings.Builder

	b.WriteString("You are a query planner for a pathology laboratory information system.\n")
	b.WriteString("Convert the question into a JSON query plan for a single table. Never write SQL.\n\n")

	b.WriteString(schemaContext)

	b.WriteString("\nRespond with exactly one JSON object and nothing else:\n")
	b.WriteString(`{
  "table": "<table name>",
  "columns": ["<column>", ...],
  "filters": [{"column": "<column>", "op": "eq|neq|gt|lt|between|contains|in", "value": ..., "low": ..., "high": ..., "values": [...]}],
  "aggregation": "none|count|list",
  "time": {"column": "<timestamp column>", "expression": "<time expression>"}
}
`)
	b.WriteString("\nRules:\n")
	b.WriteString("1. Use only tables and columns from the schema above, with exact names.\n")
	b.WriteString("2. Use \"count\" aggregation for how-many questions, \"list\" to show rows.\n")
	b.WriteString("3. Omit \"columns\" to select all columns.\n")
	b.WriteString("4. Filter values are data, never expressions or SQL.\n")
	b.WriteString("5. Relative dates go into \"time\" with one of these expressions: " +
		strings.Join(knownExpressions(), ", ") +
		", or an explicit {\"start\": \"YYYY-MM-DD\", \"end\": \"YYYY-MM-DD\"} range.\n")
	fmt.Fprintf(&b, "6. The current UTC time is %s.\n", asOf.UTC().Format(time.RFC3339))

	if len(feedback) > 0 {
		b.WriteString("\nYour previous plan was invalid. Fix these problems:\n")
		for _, f := range feedback {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String()
}

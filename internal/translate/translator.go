// Package translate turns a natural-language question into a validated
// QueryPlan via the language model, with a bounded repair loop that feeds
// validation errors back into the prompt.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"labintel/internal/catalog"
	"labintel/internal/domain"
)

// Translator converts questions into validated query plans.
type Translator struct {
	gen        domain.Generator
	cat        *catalog.Catalog
	maxRepairs int
	logger     *slog.Logger
}

// New creates a Translator. maxRepairs is the number of re-prompts after the
// first attempt; negative values are treated as zero.
func New(gen domain.Generator, cat *catalog.Catalog, maxRepairs int, logger *slog.Logger) *Translator {
	if maxRepairs < 0 {
		maxRepairs = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{gen: gen, cat: cat, maxRepairs: maxRepairs, logger: logger.With("component", "translator")}
}

// candidate is the raw JSON shape the model emits, before validation.
type candidate struct {
	Table       string          `json:"table"`
	Columns     []string        `json:"columns"`
	Filters     []candFilter    `json:"filters"`
	Aggregation string          `json:"aggregation"`
	Time        *candTimeWindow `json:"time"`
}

type candFilter struct {
	Column string        `json:"column"`
	Op     string        `json:"op"`
	Value  interface{}   `json:"value"`
	Low    interface{}   `json:"low"`
	High   interface{}   `json:"high"`
	Values []interface{} `json:"values"`
}

type candTimeWindow struct {
	Column     string `json:"column"`
	Expression string `json:"expression"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

// Translate produces a validated QueryPlan for the question. Time expressions
// are resolved against asOf (the request's arrival time), so identical
// questions translate identically within one request. Ambiguity that no hint
// resolves fails immediately; other validation failures are re-prompted up to
// the repair budget, then surface as UnresolvableQuery.
func (t *Translator) Translate(ctx context.Context, question string, asOf time.Time) (*domain.QueryPlan, error) {
	schemaContext := t.cat.PromptContext()

	var feedback []string
	var lastErr error

	attempts := t.maxRepairs + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prompt := buildPrompt(schemaContext, question, asOf, feedback)
		raw, err := t.gen.Generate(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			t.logger.Warn("model call failed", "attempt", attempt+1, "error", err)
			lastErr = err
			feedback = append(feedback, "the previous response could not be obtained, respond with the JSON object only")
			continue
		}

		plan, err := t.parseAndValidate(raw, asOf)
		if err == nil {
			t.logger.Debug("plan validated", "attempt", attempt+1, "plan", plan.String())
			return plan, nil
		}

		// Ambiguity is a deterministic dead end: re-prompting cannot add the
		// missing hint, so guessing is not allowed.
		var ambiguous *domain.AmbiguousQueryError
		if errors.As(err, &ambiguous) {
			return nil, ambiguous
		}

		t.logger.Debug("plan rejected", "attempt", attempt+1, "error", err)
		lastErr = err
		feedback = append(feedback, err.Error())
	}

	return nil, domain.ErrUnresolvableQuery(
		"could not produce a valid query plan after %d attempts: %v", attempts, lastErr)
}

// parseAndValidate decodes the model output and validates it against the
// catalog, returning a fully-resolved plan.
func (t *Translator) parseAndValidate(raw string, asOf time.Time) (*domain.QueryPlan, error) {
	var cand candidate
	if err := json.Unmarshal([]byte(raw), &cand); err != nil {
		return nil, fmt.Errorf("response is not a JSON plan object: %v", err)
	}
	return t.resolve(&cand, asOf)
}

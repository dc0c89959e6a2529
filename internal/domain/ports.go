package domain

import (
	"context"
	"time"
)

// Generator is the narrow port to the language model. It is the only source
// of nondeterminism in the pipeline; tests replace it with a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AskRecord is one persisted pipeline outcome: the question, the compiled
// statement (parameter placeholders only, no literals), and how the request
// terminated.
type AskRecord struct {
	ID          int64
	Question    string
	Statement   string
	Status      string // "answered" or "failed"
	FailureKind string
	RowCount    int
	Truncated   bool
	DurationMs  int64
	CreatedAt   time.Time
}

// Ask log terminal statuses.
const (
	AskStatusAnswered = "answered"
	AskStatusFailed   = "failed"
)

// AskLogRepository persists and lists ask records.
type AskLogRepository interface {
	Insert(ctx context.Context, rec *AskRecord) error
	List(ctx context.Context, limit int) ([]AskRecord, error)
}

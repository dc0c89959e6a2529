// Package service orchestrates the ask pipeline: translate, execute, compose.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"labintel/internal/compose"
	"labintel/internal/domain"
	"labintel/internal/execute"
	"labintel/internal/translate"
)

// AskService runs one question through the pipeline. Control flow is strictly
// linear per request; the only loop is the translator's internal repair loop.
// Every call terminates in exactly one Answer or one typed failure.
type AskService struct {
	translator *translate.Translator
	executor   *execute.Executor
	composer   *compose.Composer
	askLog     domain.AskLogRepository // nil disables the ask log
	logger     *slog.Logger
	now        func() time.Time
}

// NewAskService creates an AskService. askLog may be nil.
func NewAskService(
	translator *translate.Translator,
	executor *execute.Executor,
	composer *compose.Composer,
	askLog domain.AskLogRepository,
	logger *slog.Logger,
) *AskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AskService{
		translator: translator,
		executor:   executor,
		composer:   composer,
		askLog:     askLog,
		logger:     logger.With("component", "ask"),
		now:        time.Now,
	}
}

// SetClock overrides the arrival-time source. Tests use this to anchor
// relative time expressions.
func (s *AskService) SetClock(now func() time.Time) { s.now = now }

// Ask answers a natural-language question about the lab database.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrValidation("question is required")
	}

	asOf := s.now().UTC()
	start := time.Now()

	plan, err := s.translator.Translate(ctx, question, asOf)
	if err != nil {
		s.record(ctx, question, "", nil, start, err)
		return nil, err
	}

	statement := s.executor.Statement(plan)
	result, err := s.executor.Execute(ctx, plan)
	if err != nil {
		s.record(ctx, question, statement, nil, start, err)
		return nil, err
	}

	answer := s.composer.Compose(ctx, question, result)
	s.record(ctx, question, statement, result, start, nil)

	s.logger.Info("question answered",
		"rows", result.RowCount,
		"truncated", result.Truncated,
		"duration_ms", time.Since(start).Milliseconds())
	return answer, nil
}

// record persists the outcome to the ask log, best-effort. Log writes never
// fail a request.
func (s *AskService) record(ctx context.Context, question, statement string, result *domain.ResultSet, start time.Time, failure error) {
	if s.askLog == nil {
		return
	}

	rec := &domain.AskRecord{
		Question:   question,
		Statement:  statement,
		Status:     domain.AskStatusAnswered,
		DurationMs: time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if failure != nil {
		rec.Status = domain.AskStatusFailed
		rec.FailureKind = FailureKind(failure)
	}
	if result != nil {
		rec.RowCount = result.RowCount
		rec.Truncated = result.Truncated
	}

	// Use a detached context so a cancelled request still gets logged.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.askLog.Insert(logCtx, rec); err != nil {
		s.logger.Warn("ask log write failed", "error", err)
	}
}

// FailureKind names the taxonomy kind of a pipeline error, or "internal" for
// anything outside it.
func FailureKind(err error) string {
	var (
		ambiguous    *domain.AmbiguousQueryError
		unresolvable *domain.UnresolvableQueryError
		timeout      *domain.QueryTimeoutError
		unavailable  *domain.DatabaseUnavailableError
		catalog      *domain.CatalogUnavailableError
		validation   *domain.ValidationError
	)
	switch {
	case errors.As(err, &ambiguous):
		return "AmbiguousQuery"
	case errors.As(err, &unresolvable):
		return "UnresolvableQuery"
	case errors.As(err, &timeout):
		return "QueryTimeout"
	case errors.As(err, &unavailable):
		return "DatabaseUnavailable"
	case errors.As(err, &catalog):
		return "CatalogUnavailable"
	case errors.As(err, &validation):
		return "InvalidRequest"
	default:
		return "internal"
	}
}

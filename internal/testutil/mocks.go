// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"labintel/internal/domain"
)

// === Generator mock ===

// MockGenerator implements domain.Generator for testing. Responses are
// returned in order; when they run out, the last one repeats. GenerateFn, if
// set, overrides the canned responses entirely.
type MockGenerator struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
	Responses  []string
	Err        error

	mu      sync.Mutex
	Prompts []string // collected prompts for assertions
}

// Generate implements the interface method for testing.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	call := len(m.Prompts) - 1
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", fmt.Errorf("MockGenerator has no responses")
	}
	if call >= len(m.Responses) {
		call = len(m.Responses) - 1
	}
	return m.Responses[call], nil
}

// CallCount returns how many times Generate was invoked.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// LastPrompt returns the most recent prompt, or empty if none.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

// === Ask log mock ===

// MockAskLog implements domain.AskLogRepository for testing.
type MockAskLog struct {
	InsertErr error

	mu      sync.Mutex
	Records []domain.AskRecord // collected records for assertions
}

// Insert implements the interface method for testing.
func (m *MockAskLog) Insert(_ context.Context, rec *domain.AskRecord) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.Records) + 1)
	m.Records = append(m.Records, *rec)
	return nil
}

// List implements the interface method for testing.
func (m *MockAskLog) List(_ context.Context, limit int) ([]domain.AskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AskRecord, 0, limit)
	for i := len(m.Records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Records[i])
	}
	return out, nil
}

// LastRecord returns the last collected record, or nil if none.
func (m *MockAskLog) LastRecord() *domain.AskRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Records) == 0 {
		return nil
	}
	rec := m.Records[len(m.Records)-1]
	return &rec
}

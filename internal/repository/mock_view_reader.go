package repository

import (
	"context"
	"fmt"
	"sync"
)

// MockViewReader is a hand-written, in-memory ViewReader used in unit tests.
// No mock-generation library needed.
type MockViewReader struct {
	mu    sync.RWMutex
	views map[string][]Row
	calls []MockCall

	// Optional error override, set in tests to simulate failure paths.
	SelectErr error
}

// MockCall records one SelectFrom invocation.
type MockCall struct {
	View  string
	Limit int
}

func NewMockViewReader() *MockViewReader {
	return &MockViewReader{views: make(map[string][]Row)}
}

// Put appends rows to view.
func (m *MockViewReader) Put(view string, rows ...Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[view] = append(m.views[view], rows...)
}

func (m *MockViewReader) SelectFrom(_ context.Context, view string, limit int) ([]Row, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{View: view, Limit: limit})
	m.mu.Unlock()

	if m.SelectErr != nil {
		return nil, m.SelectErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.views[view]
	if !ok {
		return nil, fmt.Errorf("relation %q does not exist", view)
	}
	if limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		clone := make(Row, len(r))
		for k, v := range r {
			clone[k] = v
		}
		out[i] = clone
	}
	return out, nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockViewReader) Calls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

package queue

import (
	"context"
	"net/http"
	"sync"
)

// MockTransport is a hand-written, in-memory Transport used in unit tests.
// It records every request and answers with StatusCode (default 200).
type MockTransport struct {
	mu    sync.Mutex
	calls []SendRequest

	// Optional overrides, set in tests to simulate failure paths.
	StatusCode int
	SendErr    error
}

func NewMockTransport() *MockTransport {
	return &MockTransport{StatusCode: http.StatusOK}
}

func (m *MockTransport) Send(ctx context.Context, req SendRequest) (SendResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return SendResponse{}, err
	}
	if m.SendErr != nil {
		return SendResponse{}, m.SendErr
	}
	return SendResponse{StatusCode: m.StatusCode, MessageID: "mock-message"}, nil
}

// Calls returns a copy of the recorded requests.
func (m *MockTransport) Calls() []SendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

var _ Transport = (*MockTransport)(nil)

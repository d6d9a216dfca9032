package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests. Responses are returned in order;
// a nil entry in Errs means the call succeeds. When the script runs out, the
// last response repeats.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Errs      []error
	Prompts   []string // records every prompt received, in call order
}

// NewMockClient returns a client that answers every call with the given
// responses in sequence.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{Responses: responses}
}

// Generate returns the next scripted response or error.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := len(m.Prompts)
	m.Prompts = append(m.Prompts, prompt)

	if call < len(m.Errs) && m.Errs[call] != nil {
		return "", m.Errs[call]
	}
	if len(m.Responses) == 0 {
		return "", ErrEmptyResponse
	}
	if call >= len(m.Responses) {
		return m.Responses[len(m.Responses)-1], nil
	}
	return m.Responses[call], nil
}

// Calls returns how many times Generate was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

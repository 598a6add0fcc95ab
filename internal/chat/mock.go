package chat

import (
	"context"
	"errors"
	"sync"
)

// ErrMockUnavailable is returned by a failing MockClient.
var ErrMockUnavailable = errors.New("mock chat backend unavailable")

// MockClient is a scripted chat client for tests. Replies are returned in
// order; when the script runs out, the last reply repeats.
type MockClient struct {
	mu      sync.Mutex
	replies []string
	calls   [][]Message

	// Fail makes every call return ErrMockUnavailable.
	Fail bool
}

// NewMockClient creates a scripted client with the given replies.
func NewMockClient(replies ...string) *MockClient {
	return &MockClient{replies: replies}
}

// Chat records the call and returns the next scripted reply.
func (m *MockClient) Chat(ctx context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return "", ErrMockUnavailable
	}
	m.calls = append(m.calls, messages)
	if len(m.replies) == 0 {
		return "", nil
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

// Calls returns the recorded conversations.
func (m *MockClient) Calls() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op for MockClient.
func (m *MockClient) Close() error {
	return nil
}

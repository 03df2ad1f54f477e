// Package testutil provides test doubles for the llm package.
package testutil

import (
	"context"
	"sync"

	"github.com/c360studio/semfibo/llm"
)

// MockClient is a thread-safe llm.Completer for tests. It returns Responses
// in sequence and records every request it receives.
//
// Usage:
//
//	mock := &testutil.MockClient{
//	    Responses: []*llm.Response{
//	        {Content: `{"function": "list_classes", "arguments": []}`},
//	    },
//	}
//
//	// Transport failure
//	mock := &testutil.MockClient{Err: errors.New("connection refused")}
type MockClient struct {
	mu            sync.Mutex
	Responses     []*llm.Response // Responses to return in sequence
	Err           error           // Error to return (takes precedence over Responses)
	requests      []llm.Request
	responseIndex int
}

// Complete implements llm.Completer.
func (m *MockClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.Err != nil {
		return nil, m.Err
	}

	if m.responseIndex < len(m.Responses) {
		resp := m.Responses[m.responseIndex]
		m.responseIndex++
		return resp, nil
	}

	return &llm.Response{Content: "", Model: "test-model"}, nil
}

// Reply is a convenience constructor for a mock returning the given contents
// in order.
func Reply(contents ...string) *MockClient {
	m := &MockClient{}
	for _, c := range contents {
		m.Responses = append(m.Responses, &llm.Response{Content: c, Model: "test-model"})
	}
	return m
}

// CallCount returns the number of times Complete was called.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the requests received so far.
func (m *MockClient) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears recorded requests and rewinds Responses.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.responseIndex = 0
}

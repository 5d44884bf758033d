package llm

import (
	"context"
	"sync"
)

// MockResponse is one scripted answer. Err, when set, is returned as is;
// otherwise the text is checked like a real provider reply.
type MockResponse struct {
	Text  string
	Stop  StopReason
	Usage Usage
	Err   error
}

// MockProvider answers from a script, in order, and records every request.
// When the script runs out it answers Fallback, or fails as unavailable if
// Fallback is blank.
type MockProvider struct {
	mu       sync.Mutex
	script   []MockResponse
	Fallback string
	Calls    []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	var next MockResponse
	switch {
	case len(m.script) > 0:
		next, m.script = m.script[0], m.script[1:]
	case m.Fallback != "":
		next = MockResponse{Text: m.Fallback}
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	stop := next.Stop
	if stop == "" {
		stop = StopEnd
	}
	return accept(reply{text: next.Text, stop: stop, model: "mock", usage: next.Usage})
}

func (m *MockProvider) ModelID() string { return "mock" }

// CallCount reports how many requests the provider has seen.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

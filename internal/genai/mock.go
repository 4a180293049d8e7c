package genai

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a configurable fake Client/ImageClient for tests.
// Responses can be fixed per agent name or supplied by a custom
// function; every call is recorded for inspection.
type MockClient struct {
	mu           sync.Mutex
	byAgent      map[string]string
	response     string
	err          error
	generateFunc func(ctx context.Context, task Task) ([]byte, error)
	imageData    []byte
	imageErr     error

	// Calls records every Generate task in order.
	Calls []Task
	// ImageCalls records every GenerateImage prompt in order.
	ImageCalls []string
}

// Compile-time interface checks.
var (
	_ Client      = (*MockClient)(nil)
	_ ImageClient = (*MockClient)(nil)
)

// NewMockClient creates an empty mock. Configure it with the With* and
// RespondWith builders before use.
func NewMockClient() *MockClient {
	return &MockClient{byAgent: make(map[string]string)}
}

// RespondWith sets the JSON returned for tasks of the given agent.
func (m *MockClient) RespondWith(agent, json string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byAgent[agent] = json
	return m
}

// WithResponse sets the fallback JSON for agents without a RespondWith
// entry.
func (m *MockClient) WithResponse(json string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = json
	return m
}

// WithError makes every Generate call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithGenerateFunc replaces the response logic entirely.
func (m *MockClient) WithGenerateFunc(fn func(ctx context.Context, task Task) ([]byte, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateFunc = fn
	return m
}

// WithImage sets the bytes returned by GenerateImage.
func (m *MockClient) WithImage(data []byte) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageData = data
	return m
}

// WithImageError makes every GenerateImage call fail with err.
func (m *MockClient) WithImageError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageErr = err
	return m
}

// Generate implements Client.
func (m *MockClient) Generate(ctx context.Context, task Task) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, task)

	if m.generateFunc != nil {
		return m.generateFunc(ctx, task)
	}
	if m.err != nil {
		return nil, m.err
	}
	if resp, ok := m.byAgent[task.Agent]; ok {
		return []byte(resp), nil
	}
	if m.response != "" {
		return []byte(m.response), nil
	}
	return nil, fmt.Errorf("mock: no response configured for agent %q", task.Agent)
}

// GenerateImage implements ImageClient.
func (m *MockClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ImageCalls = append(m.ImageCalls, prompt)

	if m.imageErr != nil {
		return nil, m.imageErr
	}
	if m.imageData != nil {
		return m.imageData, nil
	}
	return nil, fmt.Errorf("mock: no image configured")
}

// CallCount returns the number of Generate calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent Generate task, or nil.
func (m *MockClient) LastCall() *Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	task := m.Calls[len(m.Calls)-1]
	return &task
}

// Reset clears recorded calls.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.ImageCalls = nil
}

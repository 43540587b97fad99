package model

import (
	"context"
	"fmt"
	"sync"
)

// Request is the normalized input to a completion call.
type Request struct {
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
}

// TokenUsage captures token accounting for a response.
type TokenUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Response is the final output of a completion call.
type Response struct {
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "anthropic", "openai", "mock", etc.
}

// Model is the minimal interface agents need to drive generation. Providers
// implement it so higher layers stay decoupled from vendor SDKs.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model for tests and examples.
// Completions are resolved from canned prompt/response pairs; unknown
// prompts yield a generic echo. Safe for concurrent use.
type MockModel struct {
	info Info

	mu        sync.RWMutex
	responses map[string]string
	err       error
	calls     int
}

// NewMockModel constructs an empty MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	m.responses[prompt] = response
	m.mu.Unlock()
}

// FailWith makes every subsequent Complete call return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Calls returns how many completions were requested.
func (m *MockModel) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Complete implements Model.
func (m *MockModel) Complete(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}

	text, ok := m.responses[req.Prompt]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}
	return &Response{Text: text, FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

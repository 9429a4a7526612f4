package mock

import (
	"context"
	"sync"

	"github.com/parkho-ai/contentengine/ai"
)

// MockTranscriber is a test double for ai.Transcriber.
type MockTranscriber struct {
	ProviderName ai.ProviderName
	Unavailable  bool

	// InvokeFunc is called by Invoke if set.
	// If nil, returns Text as the transcript.
	InvokeFunc func(ctx context.Context, req ai.AudioRequest) (ai.Transcript, error)

	Text string

	mu        sync.Mutex
	callCount int
}

// NewMockTranscriber creates a transcriber that always returns text.
func NewMockTranscriber(name ai.ProviderName, text string) *MockTranscriber {
	return &MockTranscriber{ProviderName: name, Text: text}
}

func (m *MockTranscriber) Name() ai.ProviderName {
	if m.ProviderName == "" {
		return ai.ProviderOpenAI
	}
	return m.ProviderName
}

func (m *MockTranscriber) Available() bool {
	return !m.Unavailable
}

func (m *MockTranscriber) Invoke(ctx context.Context, req ai.AudioRequest) (ai.Transcript, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.InvokeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return ai.Transcript{Text: m.Text, Language: req.Language}, nil
}

// CallCount returns the number of times Invoke was called.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MockMediaAnalyzer is a test double for ai.MediaAnalyzer.
type MockMediaAnalyzer struct {
	Unavailable bool

	// AnalyzeFunc is called by Analyze if set.
	// If nil, returns Response.
	AnalyzeFunc func(ctx context.Context, req ai.MediaRequest) (ai.TextResponse, error)

	Response string

	mu        sync.Mutex
	callCount int
}

func (m *MockMediaAnalyzer) Name() ai.ProviderName {
	return ai.ProviderGoogle
}

func (m *MockMediaAnalyzer) Available() bool {
	return !m.Unavailable
}

func (m *MockMediaAnalyzer) Analyze(ctx context.Context, req ai.MediaRequest) (ai.TextResponse, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.AnalyzeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return ai.TextResponse{Text: m.Response, Model: "mock"}, nil
}

// CallCount returns the number of times Analyze was called.
func (m *MockMediaAnalyzer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

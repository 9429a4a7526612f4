// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mock

import (
	"context"
	"sync"

	"github.com/parkho-ai/contentengine/ai"
)

// MockTextGenerator is a test double for ai.TextGenerator.
type MockTextGenerator struct {
	// ProviderName is returned by Name. Defaults to ai.ProviderGoogle.
	ProviderName ai.ProviderName

	// Unavailable makes Available report false.
	Unavailable bool

	// InvokeFunc is called by Invoke if set.
	// If nil, returns Response.
	InvokeFunc func(ctx context.Context, req ai.TextRequest) (ai.TextResponse, error)

	// Response is the default reply.
	Response string

	mu        sync.Mutex
	callCount int
	requests  []ai.TextRequest
}

// NewMockTextGenerator creates a generator that always replies with response.
func NewMockTextGenerator(name ai.ProviderName, response string) *MockTextGenerator {
	return &MockTextGenerator{ProviderName: name, Response: response}
}

// Name returns the configured provider name.
func (m *MockTextGenerator) Name() ai.ProviderName {
	if m.ProviderName == "" {
		return ai.ProviderGoogle
	}
	return m.ProviderName
}

// Available reports whether the mock is enabled.
func (m *MockTextGenerator) Available() bool {
	return !m.Unavailable
}

// Invoke records the request and returns the configured reply.
func (m *MockTextGenerator) Invoke(ctx context.Context, req ai.TextRequest) (ai.TextResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	fn := m.InvokeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return ai.TextResponse{Text: m.Response, Model: "mock"}, nil
}

// CallCount returns the number of times Invoke was called.
func (m *MockTextGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of every request received.
func (m *MockTextGenerator) Requests() []ai.TextRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.TextRequest(nil), m.requests...)
}

// Reset clears the call count and recorded requests.
func (m *MockTextGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.requests = nil
}

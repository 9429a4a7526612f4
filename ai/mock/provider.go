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
	"github.com/parkho-ai/contentengine/ai"
)

// MockProvider is a test double for ai.AIProvider.
// It builds real chains over mock providers so fallback behavior is exercised.
type MockProvider struct {
	generators   []*MockTextGenerator
	transcribers []*MockTranscriber
	media        *MockMediaAnalyzer
	text         *ai.TextChain
	transcribe   *ai.TranscriptionChain
	closed       bool
}

// NewMockProvider creates a mock provider with one generator, one
// transcriber and a media analyzer, all answering with empty defaults.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockGenerators()/GetMockTranscribers()/GetMockMedia() for assertions.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(
		[]*MockTextGenerator{NewMockTextGenerator(ai.ProviderGoogle, "{}")},
		[]*MockTranscriber{NewMockTranscriber(ai.ProviderOpenAI, "transcript")},
		&MockMediaAnalyzer{Response: "{}"},
	)
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// Generators and transcribers are tried in the order given.
func NewMockProviderWithServices(generators []*MockTextGenerator, transcribers []*MockTranscriber, media *MockMediaAnalyzer) *MockProvider {
	p := &MockProvider{
		generators:   generators,
		transcribers: transcribers,
		media:        media,
	}

	textProviders := make([]ai.TextGenerator, 0, len(generators))
	textOrder := make([]ai.ProviderName, 0, len(generators))
	for _, g := range generators {
		textProviders = append(textProviders, g)
		textOrder = append(textOrder, g.Name())
	}
	audioProviders := make([]ai.Transcriber, 0, len(transcribers))
	audioOrder := make([]ai.ProviderName, 0, len(transcribers))
	for _, tr := range transcribers {
		audioProviders = append(audioProviders, tr)
		audioOrder = append(audioOrder, tr.Name())
	}

	// Empty service lists leave the chain nil; callers that need it must
	// supply at least one mock.
	p.text, _ = ai.NewChain(ai.CapabilityText, textOrder, textProviders)
	p.transcribe, _ = ai.NewChain(ai.CapabilityTranscription, audioOrder, audioProviders)
	return p
}

// Text returns a chain over the mock generators.
func (p *MockProvider) Text() *ai.TextChain {
	return p.text
}

// Transcription returns a chain over the mock transcribers.
func (p *MockProvider) Transcription() *ai.TranscriptionChain {
	return p.transcribe
}

// Media returns the mock media analyzer.
func (p *MockProvider) Media() ai.MediaAnalyzer {
	if p.media == nil {
		return &MockMediaAnalyzer{Unavailable: true}
	}
	return p.media
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockGenerators returns the underlying generators for test assertions.
func (p *MockProvider) GetMockGenerators() []*MockTextGenerator {
	return p.generators
}

// GetMockTranscribers returns the underlying transcribers for test assertions.
func (p *MockProvider) GetMockTranscribers() []*MockTranscriber {
	return p.transcribers
}

// GetMockMedia returns the underlying media analyzer for test assertions.
func (p *MockProvider) GetMockMedia() *MockMediaAnalyzer {
	return p.media
}

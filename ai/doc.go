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

// Package ai provides abstractions for the AI back-ends used by the engine.
//
// Every back-end implements one capability through the generic Provider
// interface. Two capabilities exist:
//
//   - text generation: TextRequest -> TextResponse
//   - audio transcription: AudioRequest -> Transcript
//
// Providers of the same capability are interchangeable and are combined in a
// Chain, which tries them in order until one succeeds:
//
//	chain, err := ai.NewChain(ai.CapabilityText, cfg.TextOrder, google, anthropic, openai)
//	out, err := chain.Execute(ctx, ai.TextRequest{Prompt: "..."}, ai.ProviderOpenAI)
//	// out.Provider, out.FallbackOccurred, out.Failures
//
// A Chain never surfaces a single provider's raw error. When every provider
// is unavailable or failed it returns one *core.Error of kind aggregate that
// wraps ErrAllProvidersFailed.
//
// # Implementation Packages
//
//   - ai/llm: text generation and multimodal analysis through langchaingo
//   - ai/transcribe: transcription through Whisper-compatible APIs and Gemini
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in the implementation packages return interface types.
// Mock constructors return concrete types so tests can inject behavior and
// assert call counts.
package ai

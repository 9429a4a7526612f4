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

// Package llm provides AI service implementations on top of langchaingo.
//
// This package implements the ai.AIProvider interface. Text generation is
// backed by Gemini, Claude, OpenAI and Ollama through their langchaingo
// clients; Gemini also serves as a multimodal media analyzer and as an
// audio transcriber. Whisper transcription comes from ai/transcribe.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithGoogleAPIKey(os.Getenv("GOOGLE_API_KEY")),
//	    ai.WithOpenAIAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//
//	provider, err := llm.NewProvider(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	outcome, err := provider.Text().Execute(ctx, ai.TextRequest{Prompt: "Summarize..."}, "")
//
// The package also carries the JSON helpers used to read model output:
// CleanJSON strips Markdown fences and repairs truncation, and
// ExtractJSONObject pulls the first balanced object out of prose.
package llm

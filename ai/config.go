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

package ai

import (
	"errors"
	"slices"
	"strings"
)

// Config holds credentials and model choices for every AI back-end.
// A provider whose credential is empty is considered unavailable.
type Config struct {
	// GoogleAPIKey enables Gemini for text, transcription and media analysis.
	GoogleAPIKey string `yaml:"google_api_key"`

	// AnthropicAPIKey enables Claude for text generation.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	// OpenAIAPIKey enables OpenAI for text generation and Whisper transcription.
	OpenAIAPIKey string `yaml:"openai_api_key"`

	// OpenAIBaseURL overrides the OpenAI endpoint. Empty uses the public API.
	OpenAIBaseURL string `yaml:"openai_base_url"`

	// OllamaHost enables a local Ollama server for text generation.
	// Example: "http://localhost:11434"
	OllamaHost string `yaml:"ollama_host"`

	// LocalWhisperHost enables a local OpenAI-compatible transcription server.
	// Example: "http://localhost:8000/v1"
	LocalWhisperHost string `yaml:"local_whisper_host"`

	GoogleModel       string `yaml:"google_model"`
	AnthropicModel    string `yaml:"anthropic_model"`
	OpenAIModel       string `yaml:"openai_model"`
	OllamaModel       string `yaml:"ollama_model"`
	WhisperModel      string `yaml:"whisper_model"`
	LocalWhisperModel string `yaml:"local_whisper_model"`

	// MediaModel is the multimodal model used by the fast video path.
	MediaModel string `yaml:"media_model"`

	// TextOrder overrides DefaultTextOrder.
	TextOrder []ProviderName `yaml:"text_order"`

	// TranscriptionOrder overrides DefaultTranscriptionOrder.
	TranscriptionOrder []ProviderName `yaml:"transcription_order"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithGoogleAPIKey sets the Google API key.
func WithGoogleAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.GoogleAPIKey = key
	}
}

// WithAnthropicAPIKey sets the Anthropic API key.
func WithAnthropicAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.AnthropicAPIKey = key
	}
}

// WithOpenAIAPIKey sets the OpenAI API key.
func WithOpenAIAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.OpenAIAPIKey = key
	}
}

// WithOllamaHost sets the Ollama server URL.
func WithOllamaHost(host string) ConfigOption {
	return func(c *Config) {
		c.OllamaHost = host
	}
}

// WithLocalWhisperHost sets the local transcription server URL.
func WithLocalWhisperHost(host string) ConfigOption {
	return func(c *Config) {
		c.LocalWhisperHost = host
	}
}

// WithMediaModel sets the multimodal model for the fast video path.
func WithMediaModel(model string) ConfigOption {
	return func(c *Config) {
		c.MediaModel = model
	}
}

// WithTextOrder sets the default text-generation try-order.
func WithTextOrder(order ...ProviderName) ConfigOption {
	return func(c *Config) {
		c.TextOrder = order
	}
}

// WithTranscriptionOrder sets the default transcription try-order.
func WithTranscriptionOrder(order ...ProviderName) ConfigOption {
	return func(c *Config) {
		c.TranscriptionOrder = order
	}
}

// DefaultConfig returns a Config with default model names and no credentials.
func DefaultConfig() *Config {
	return &Config{
		GoogleModel:        "gemini-2.0-flash",
		AnthropicModel:     "claude-3-haiku-20240307",
		OpenAIModel:        "gpt-4o-mini",
		OllamaModel:        "qwen2.5:3b",
		WhisperModel:       "whisper-1",
		LocalWhisperModel:  "Systran/faster-whisper-small",
		MediaModel:         "gemini-2.5-flash",
		TextOrder:          slices.Clone(DefaultTextOrder),
		TranscriptionOrder: slices.Clone(DefaultTranscriptionOrder),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithGoogleAPIKey(os.Getenv("GOOGLE_API_KEY")),
//       WithTextOrder(ProviderAnthropic, ProviderGoogle),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Credentials are trimmed, and the local Whisper host gets the /v1 suffix
// required by OpenAI-compatible servers.
func (c *Config) Normalize() {
	c.GoogleAPIKey = strings.TrimSpace(c.GoogleAPIKey)
	c.AnthropicAPIKey = strings.TrimSpace(c.AnthropicAPIKey)
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.OllamaHost = strings.TrimSuffix(strings.TrimSpace(c.OllamaHost), "/")

	if c.LocalWhisperHost != "" && !strings.HasSuffix(c.LocalWhisperHost, "/v1") {
		c.LocalWhisperHost = strings.TrimSuffix(c.LocalWhisperHost, "/")
		c.LocalWhisperHost = c.LocalWhisperHost + "/v1"
	}
	if len(c.TextOrder) == 0 {
		c.TextOrder = slices.Clone(DefaultTextOrder)
	}
	if len(c.TranscriptionOrder) == 0 {
		c.TranscriptionOrder = slices.Clone(DefaultTranscriptionOrder)
	}
}

// Validate checks that the configuration is usable.
// It automatically normalizes the configuration before validation.
// Missing credentials are not an error; they make providers unavailable.
func (c *Config) Validate() error {
	c.Normalize()

	if c.GoogleModel == "" || c.AnthropicModel == "" || c.OpenAIModel == "" {
		return errors.New("ai config: text model names are required")
	}
	if c.WhisperModel == "" {
		return errors.New("ai config: WhisperModel is required")
	}
	if c.MediaModel == "" {
		return errors.New("ai config: MediaModel is required")
	}
	for _, name := range slices.Concat(c.TextOrder, c.TranscriptionOrder) {
		if ParseProviderName(string(name)) != name {
			return errors.New("ai config: unknown provider in order: " + string(name))
		}
	}
	return nil
}

// HasGoogle reports whether Gemini credentials are configured.
func (c *Config) HasGoogle() bool {
	return c.GoogleAPIKey != ""
}

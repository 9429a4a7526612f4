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

package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/ai/transcribe"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.AIProvider using langchaingo clients for text and
// multimodal calls and go-openai for Whisper transcription.
type Provider struct {
	config        *ai.Config
	google        *googleai.GoogleAI
	googleMedia   *googleai.GoogleAI
	text          *ai.TextChain
	transcription *ai.TranscriptionChain
	media         *MediaAnalyzer
	logger        *slog.Logger
}

// ProviderOption configures NewProvider.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	observe      ai.FailureObserver
	generators   []ai.TextGenerator
	transcribers []ai.Transcriber
}

// WithFailureObserver is forwarded to both chains.
func WithFailureObserver(f ai.FailureObserver) ProviderOption {
	return func(o *providerOptions) {
		o.observe = f
	}
}

// WithExtraGenerators registers additional text generators after the built-in ones.
func WithExtraGenerators(generators ...ai.TextGenerator) ProviderOption {
	return func(o *providerOptions) {
		o.generators = append(o.generators, generators...)
	}
}

// WithExtraTranscribers registers additional transcribers after the built-in ones.
func WithExtraTranscribers(transcribers ...ai.Transcriber) ProviderOption {
	return func(o *providerOptions) {
		o.transcribers = append(o.transcribers, transcribers...)
	}
}

// NewProvider creates every configured client and assembles the chains.
// The config is validated and normalized before use. Providers without
// credentials are still registered but report themselves unavailable.
func NewProvider(ctx context.Context, config *ai.Config, opts ...ProviderOption) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	options := &providerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "llm-provider"),
	}

	var googleText, googleMedia llms.Model
	if config.GoogleAPIKey != "" {
		client, err := googleai.New(ctx,
			googleai.WithAPIKey(config.GoogleAPIKey),
			googleai.WithDefaultModel(config.GoogleModel))
		if err != nil {
			return nil, fmt.Errorf("google client: %w", err)
		}
		p.google = client
		googleText = client

		media, err := googleai.New(ctx,
			googleai.WithAPIKey(config.GoogleAPIKey),
			googleai.WithDefaultModel(config.MediaModel))
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("google media client: %w", err)
		}
		p.googleMedia = media
		googleMedia = media
	}

	anthropicClient, err := optionalClient(config.AnthropicAPIKey != "", func() (llms.Model, error) {
		return anthropic.New(anthropic.WithToken(config.AnthropicAPIKey), anthropic.WithModel(config.AnthropicModel))
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("anthropic client: %w", err)
	}

	openaiClient, err := optionalClient(config.OpenAIAPIKey != "", func() (llms.Model, error) {
		clientOpts := []openai.Option{openai.WithToken(config.OpenAIAPIKey), openai.WithModel(config.OpenAIModel)}
		if config.OpenAIBaseURL != "" {
			clientOpts = append(clientOpts, openai.WithBaseURL(config.OpenAIBaseURL))
		}
		return openai.New(clientOpts...)
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("openai client: %w", err)
	}

	ollamaClient, err := optionalClient(config.OllamaHost != "", func() (llms.Model, error) {
		return ollama.New(ollama.WithServerURL(config.OllamaHost), ollama.WithModel(config.OllamaModel))
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("ollama client: %w", err)
	}

	generators := []ai.TextGenerator{
		NewGenerator(ai.ProviderGoogle, config.GoogleModel, googleText),
		NewGenerator(ai.ProviderAnthropic, config.AnthropicModel, anthropicClient),
		NewGenerator(ai.ProviderOpenAI, config.OpenAIModel, openaiClient),
		NewGenerator(ai.ProviderOllama, config.OllamaModel, ollamaClient),
	}
	generators = append(generators, options.generators...)

	transcribers := []ai.Transcriber{
		transcribe.NewWhisper(ai.ProviderOpenAI, config.OpenAIAPIKey, config.OpenAIBaseURL, config.WhisperModel),
		NewAudioTranscriber(ai.ProviderGoogle, config.MediaModel, googleMedia),
		transcribe.NewWhisper(ai.ProviderLocal, "", config.LocalWhisperHost, config.LocalWhisperModel),
	}
	transcribers = append(transcribers, options.transcribers...)

	chainOpts := []ai.ChainOption{ai.WithFailureObserver(options.observe)}

	p.text, err = ai.NewChain(ai.CapabilityText, config.TextOrder, generators,
		append(chainOpts, ai.WithClassifier(Classify))...)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.transcription, err = ai.NewChain(ai.CapabilityTranscription, config.TranscriptionOrder, transcribers,
		append(chainOpts, ai.WithClassifier(classifyTranscription))...)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.media = NewMediaAnalyzer(ai.ProviderGoogle, config.MediaModel, googleMedia)

	p.logger.Info("AI provider ready",
		"text", p.text.Available(),
		"transcription", p.transcription.Available(),
		"media", p.media.Available())

	return p, nil
}

// Text returns the text-generation chain.
func (p *Provider) Text() *ai.TextChain {
	return p.text
}

// Transcription returns the transcription chain.
func (p *Provider) Transcription() *ai.TranscriptionChain {
	return p.transcription
}

// Media returns the multimodal analyzer.
func (p *Provider) Media() ai.MediaAnalyzer {
	return p.media
}

// Close releases the Gemini clients. Other clients are plain HTTP and need
// no cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing AI provider")
	if p.google != nil {
		p.google.Close()
		p.google = nil
	}
	if p.googleMedia != nil {
		p.googleMedia.Close()
		p.googleMedia = nil
	}
	return nil
}

func optionalClient(enabled bool, build func() (llms.Model, error)) (llms.Model, error) {
	if !enabled {
		return nil, nil
	}
	return build()
}

// classifyTranscription understands both go-openai and langchaingo errors.
func classifyTranscription(err error) ai.FailureClass {
	if class := transcribe.Classify(err); class != ai.FailureUnknown {
		return class
	}
	return Classify(err)
}

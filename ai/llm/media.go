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
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/parkho-ai/contentengine/ai"
	"github.com/tmc/langchaingo/llms"
)

const transcriptionPrompt = "Transcribe the speech in this audio verbatim. " +
	"Return only the transcript text without timestamps, speaker labels or commentary."

// MediaAnalyzer sends a media artifact and a prompt to a multimodal model in
// one call. It implements ai.MediaAnalyzer.
type MediaAnalyzer struct {
	name   ai.ProviderName
	model  string
	client llms.Model
	mapper *llms.ErrorMapper
	logger *slog.Logger
}

var _ ai.MediaAnalyzer = (*MediaAnalyzer)(nil)

// NewMediaAnalyzer wraps a multimodal client. A nil client makes it unavailable.
func NewMediaAnalyzer(name ai.ProviderName, model string, client llms.Model) *MediaAnalyzer {
	return &MediaAnalyzer{
		name:   name,
		model:  model,
		client: client,
		mapper: errorMapperFor(name),
		logger: slog.Default().With("component", "llm-media", "provider", string(name)),
	}
}

// Name returns the provider name.
func (m *MediaAnalyzer) Name() ai.ProviderName {
	return m.name
}

// Available reports whether a client is configured.
func (m *MediaAnalyzer) Available() bool {
	return m.client != nil
}

// Analyze attaches the artifact at req.Path as binary content and returns
// the model's text response.
func (m *MediaAnalyzer) Analyze(ctx context.Context, req ai.MediaRequest) (ai.TextResponse, error) {
	if m.client == nil {
		return ai.TextResponse{}, ai.ErrProviderNotConfigured
	}

	part, err := binaryPartFromFile(req.Path, req.MIMEType)
	if err != nil {
		return ai.TextResponse{}, err
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{part, llms.TextPart(req.Prompt)},
		},
	}

	response, err := m.client.GenerateContent(ctx, content, callOptions(req.Temperature, req.MaxTokens, false)...)
	if err != nil {
		return ai.TextResponse{}, m.mapper.WrapError(err)
	}
	if len(response.Choices) < 1 || strings.TrimSpace(response.Choices[0].Content) == "" {
		return ai.TextResponse{}, ai.ErrEmptyResponse
	}

	m.logger.Debug("media analyzed", "path", req.Path, "mime", part.MIMEType, "chars", len(response.Choices[0].Content))
	return ai.TextResponse{Text: response.Choices[0].Content, Model: m.model}, nil
}

// AudioTranscriber uses a multimodal model as a transcription provider.
// It implements ai.Transcriber.
type AudioTranscriber struct {
	analyzer *MediaAnalyzer
}

var _ ai.Transcriber = (*AudioTranscriber)(nil)

// NewAudioTranscriber creates a transcriber backed by a multimodal client.
func NewAudioTranscriber(name ai.ProviderName, model string, client llms.Model) *AudioTranscriber {
	return &AudioTranscriber{analyzer: NewMediaAnalyzer(name, model, client)}
}

// Name returns the provider name.
func (t *AudioTranscriber) Name() ai.ProviderName {
	return t.analyzer.Name()
}

// Available reports whether a client is configured.
func (t *AudioTranscriber) Available() bool {
	return t.analyzer.Available()
}

// Invoke transcribes the audio artifact.
func (t *AudioTranscriber) Invoke(ctx context.Context, req ai.AudioRequest) (ai.Transcript, error) {
	prompt := transcriptionPrompt
	if req.Language != "" {
		prompt += " The audio language is " + req.Language + "."
	}
	resp, err := t.analyzer.Analyze(ctx, ai.MediaRequest{
		Path:     req.Path,
		MIMEType: req.MIMEType,
		Prompt:   prompt,
	})
	if err != nil {
		return ai.Transcript{}, err
	}
	return ai.Transcript{Text: strings.TrimSpace(resp.Text), Language: req.Language}, nil
}

func binaryPartFromFile(path, mimeType string) (llms.BinaryContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return llms.BinaryContent{}, err
	}
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	if !strings.HasPrefix(mimeType, "audio/") && !strings.HasPrefix(mimeType, "video/") {
		return llms.BinaryContent{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
	}
	// Drop parameters such as "; codecs=opus".
	if i := strings.Index(mimeType, ";"); i > 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return llms.BinaryPart(mimeType, data), nil
}

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

package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/sashabaranov/go-openai"
)

// audioClient is the subset of the go-openai client used for transcription.
type audioClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Whisper implements ai.Transcriber against the OpenAI audio API or any
// OpenAI-compatible transcription server.
type Whisper struct {
	name   ai.ProviderName
	model  string
	client audioClient
	logger *slog.Logger
}

var _ ai.Transcriber = (*Whisper)(nil)

// NewWhisper creates a transcriber for the given endpoint.
// An empty token and baseURL make the transcriber unavailable.
// Local servers that do not require authentication are reached with the
// token "none".
func NewWhisper(name ai.ProviderName, token, baseURL, model string) ai.Transcriber {
	return newWhisper(name, token, baseURL, model)
}

func newWhisper(name ai.ProviderName, token, baseURL, model string) *Whisper {
	w := &Whisper{
		name:   name,
		model:  model,
		logger: slog.Default().With("component", "whisper", "provider", string(name)),
	}
	if token == "" && baseURL == "" {
		return w
	}
	if token == "" {
		token = "none"
	}
	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	w.client = openai.NewClientWithConfig(cfg)
	return w
}

// Name returns the provider name.
func (w *Whisper) Name() ai.ProviderName {
	return w.name
}

// Available reports whether an endpoint is configured.
func (w *Whisper) Available() bool {
	return w.client != nil
}

// Invoke uploads the audio artifact and returns the transcript.
func (w *Whisper) Invoke(ctx context.Context, req ai.AudioRequest) (ai.Transcript, error) {
	if w.client == nil {
		return ai.Transcript{}, ai.ErrProviderNotConfigured
	}

	start := time.Now()
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: req.Path,
		Language: req.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return ai.Transcript{}, err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return ai.Transcript{}, ai.ErrEmptyResponse
	}

	w.logger.Debug("transcribed audio",
		"path", req.Path,
		"chars", len(text),
		"took", time.Since(start))

	return ai.Transcript{
		Text:     text,
		Language: resp.Language,
		Duration: time.Duration(resp.Duration * float64(time.Second)),
	}, nil
}

// Classify maps go-openai HTTP errors onto ai failure classes.
func Classify(err error) ai.FailureClass {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.Is(err, context.DeadlineExceeded):
		return ai.FailureTimeout
	}

	switch {
	case status == 401 || status == 403:
		return ai.FailureAuthentication
	case status == 429:
		return ai.FailureRateLimit
	case status == 408 || status == 504:
		return ai.FailureTimeout
	case status >= 500:
		return ai.FailureUnavailable
	}
	return ai.DefaultClassifier(err)
}

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
	"log/slog"
	"strings"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/tmc/langchaingo/llms"
)

// Generator implements ai.TextGenerator on top of a langchaingo model.
type Generator struct {
	name      ai.ProviderName
	model     string
	client    llms.Model
	available bool
	mapper    *llms.ErrorMapper
	logger    *slog.Logger
}

var _ ai.TextGenerator = (*Generator)(nil)

// NewGenerator wraps client as a text-generation provider.
// A nil client makes the generator unavailable.
func NewGenerator(name ai.ProviderName, model string, client llms.Model) *Generator {
	return &Generator{
		name:      name,
		model:     model,
		client:    client,
		available: client != nil,
		mapper:    errorMapperFor(name),
		logger:    slog.Default().With("component", "llm-generator", "provider", string(name)),
	}
}

// Name returns the provider name.
func (g *Generator) Name() ai.ProviderName {
	return g.name
}

// Available reports whether the generator has a configured client.
func (g *Generator) Available() bool {
	return g.available
}

// Invoke sends a system + user prompt and returns the first choice.
func (g *Generator) Invoke(ctx context.Context, req ai.TextRequest) (ai.TextResponse, error) {
	if !g.available {
		return ai.TextResponse{}, ai.ErrProviderNotConfigured
	}

	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	response, err := g.client.GenerateContent(ctx, content, callOptions(req.Temperature, req.MaxTokens, req.JSON)...)
	if err != nil {
		g.logger.Debug("generate content failed", "err", err)
		return ai.TextResponse{}, g.mapper.WrapError(err)
	}

	if len(response.Choices) < 1 || strings.TrimSpace(response.Choices[0].Content) == "" {
		return ai.TextResponse{}, ai.ErrEmptyResponse
	}

	choice := response.Choices[0]
	g.logger.Debug("generated content",
		"chars", len(choice.Content),
		"stop_reason", choice.StopReason)

	return ai.TextResponse{Text: choice.Content, Model: g.model}, nil
}

func callOptions(temperature float64, maxTokens int, json bool) []llms.CallOption {
	var opts []llms.CallOption
	if temperature > 0 {
		opts = append(opts, llms.WithTemperature(temperature))
	}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	if json {
		opts = append(opts, llms.WithJSONMode())
	}
	return opts
}

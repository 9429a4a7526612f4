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

package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/ai/llm"
	"github.com/parkho-ai/contentengine/collection"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/parsing"
)

// GeneralPipelineName identifies the general pipeline.
const GeneralPipelineName = "general_pipeline"

const (
	maxSummaryContentChars = 100_000
	summaryTemperature     = 0.3
	summaryMaxTokens       = 1000
	questionTemperature    = 0.5
	questionMaxTokens      = 4000
)

// GeneralPipeline parses every source, merges them into one document and
// generates a summary and questions through the text chain. It accepts any
// mix of content types.
type GeneralPipeline struct {
	jobs        JobStore
	coordinator *parsing.Coordinator
	text        *ai.TextChain
	opts        *options
	logger      *slog.Logger
}

var _ Strategy = (*GeneralPipeline)(nil)

// NewGeneralPipeline creates the general pipeline.
func NewGeneralPipeline(jobs JobStore, coordinator *parsing.Coordinator, text *ai.TextChain, opts ...Option) *GeneralPipeline {
	return &GeneralPipeline{
		jobs:        jobs,
		coordinator: coordinator,
		text:        text,
		opts:        applyOptions(opts),
		logger:      slog.Default().With("component", "general-pipeline"),
	}
}

// Name returns "general_pipeline".
func (g *GeneralPipeline) Name() string {
	return GeneralPipelineName
}

// SupportsContentType reports true for every known content type.
func (g *GeneralPipeline) SupportsContentType(t core.ContentType) bool {
	return t.Valid()
}

// CanProcessJob reports whether every source has a known content type.
func (g *GeneralPipeline) CanProcessJob(sources []core.ContentSource) bool {
	return canProcess(g, sources)
}

// PriorityScore favours mixed, multi-source and document-heavy jobs.
func (g *GeneralPipeline) PriorityScore(sources []core.ContentSource, opts core.ProcessingOptions) int {
	if !g.CanProcessJob(sources) {
		return 0
	}

	score := 60
	types := distinctTypes(sources)
	if len(types) > 1 {
		score += 20
	}
	if len(sources) > 1 {
		score += 10
	}
	for t := range types {
		if t != core.ContentTypeVideo {
			score += 15
			break
		}
	}
	if opts.CollectionID != "" {
		score += 10
	}
	return min(score, 100)
}

// ExpectedDuration estimates parse time per source plus question generation.
func (g *GeneralPipeline) ExpectedDuration(sources []core.ContentSource, opts core.ProcessingOptions) time.Duration {
	var total time.Duration
	for _, src := range sources {
		switch src.ContentType {
		case core.ContentTypeVideo:
			total += 300 * time.Second
		case core.ContentTypePDF, core.ContentTypeDOCX:
			total += 30 * time.Second
		case core.ContentTypeWebPage:
			total += 60 * time.Second
		default:
			total += 120 * time.Second
		}
	}
	total += 60 * time.Second
	if opts.CollectionID != "" {
		total += 30 * time.Second
	}
	return total
}

// Info describes the general pipeline.
func (g *GeneralPipeline) Info() Info {
	return Info{
		Name:         GeneralPipelineName,
		DisplayName:  "General Pipeline",
		Description:  "Parses every source, merges the text and generates a summary and questions with provider fallback.",
		ContentTypes: core.ContentTypes,
		Features: map[string]bool{
			"multi_source":       true,
			"mixed_content":      true,
			"parallel_parsing":   true,
			"provider_fallback":  true,
			"collection_context": g.opts.collection != nil,
		},
		TypicalTime: "1-10 minutes",
	}
}

// Process runs the pipeline for jobID. Failures are returned as a failed
// result; a question generation failure after a successful summary yields a
// partial result.
func (g *GeneralPipeline) Process(ctx context.Context, jobID string) (result *core.ProcessingResult, err error) {
	start := time.Now()
	defer recoverResult(GeneralPipelineName, start, &result)

	logger := g.logger.With("job_id", jobID)
	fail := func(err error) (*core.ProcessingResult, error) {
		logger.Error("general pipeline failed", "err", err, "took", time.Since(start))
		return core.NewFailedResult(GeneralPipelineName, err, time.Since(start)), nil
	}

	job, err := loadJob(ctx, g.jobs, jobID)
	if err != nil {
		return fail(err)
	}
	progress := NewProgressReporter(g.jobs, g.opts.notifier, jobID)
	preferred := ai.ParseProviderName(job.Options.PreferredProvider)

	progress.Update(ctx, ProgressParsing, "Parsing content sources")
	results, err := g.coordinator.ParseAll(ctx, job.Sources)
	if err != nil {
		return fail(err)
	}
	doc, err := parsing.Combine(results)
	if err != nil {
		return fail(err)
	}
	title := job.Title
	if title == "" {
		title = doc.Title
	}

	metadata := map[string]any{
		"sources":        doc.Sources,
		"source_count":   len(job.Sources),
		"parsed_count":   parsing.SuccessCount(results),
		"failed_sources": failedSources(results),
	}

	progress.Update(ctx, ProgressContext, "Retrieving collection context")
	background := g.collectionContext(ctx, job, doc, metadata)

	progress.Update(ctx, ProgressSummary, "Generating summary")
	content := llm.Truncate(doc.Text, maxSummaryContentChars)
	summary, err := g.text.Execute(ctx, ai.TextRequest{
		System:      summarySystemPrompt,
		Prompt:      summaryPrompt(title, content, background),
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	}, preferred)
	if err != nil {
		return fail(err)
	}
	recordOutcome(metadata, "summary", summary)

	result = &core.ProcessingResult{
		Status:       core.StatusSuccess,
		Title:        title,
		ContentText:  doc.Text,
		Summary:      summary.Output.Text,
		StrategyUsed: GeneralPipelineName,
		Metadata:     metadata,
	}

	progress.Update(ctx, ProgressQuestions, "Generating questions")
	questions, err := g.generateQuestions(ctx, job, content, result.Summary, background, preferred, metadata)
	if err != nil {
		logger.Warn("question generation failed, returning partial result", "err", err)
		result.Status = core.StatusPartial
		result.Error = core.Message(err)
		result.ErrorKind = core.KindOf(err)
	}
	result.Questions = questions

	progress.Update(ctx, ProgressFinalize, "Finalizing results")
	result.Elapsed = time.Since(start)
	logger.Info("general pipeline completed",
		"status", result.Status,
		"sources", len(job.Sources),
		"questions", len(result.Questions),
		"took", result.Elapsed)
	return result, nil
}

func (g *GeneralPipeline) collectionContext(ctx context.Context, job *core.Job, doc core.CombinedDocument, metadata map[string]any) string {
	if g.opts.collection == nil || job.Options.CollectionID == "" {
		return ""
	}
	text, err := g.opts.collection.GetContext(ctx, job.Options.CollectionID, collection.BuildQuery(doc.Title, doc.Text))
	if err != nil {
		g.logger.Warn("collection context unavailable", "job_id", job.ID, "collection_id", job.Options.CollectionID, "err", err)
		metadata["collection_error"] = core.Message(err)
		return ""
	}
	metadata["collection_context"] = text != ""
	return text
}

func (g *GeneralPipeline) generateQuestions(ctx context.Context, job *core.Job, content, summary, background string, preferred ai.ProviderName, metadata map[string]any) ([]core.Question, error) {
	counts := job.Options.QuestionCounts
	if job.Options.TotalQuestions() == 0 {
		counts = g.opts.defaultCounts
	}

	outcome, err := g.text.Execute(ctx, ai.TextRequest{
		System:      questionSystemPrompt,
		Prompt:      questionPrompt(content, summary, background, counts, job.Options.Difficulty),
		Temperature: questionTemperature,
		MaxTokens:   questionMaxTokens,
		JSON:        true,
	}, preferred)
	if err != nil {
		return nil, err
	}
	recordOutcome(metadata, "questions", outcome)

	parsed := ParseStructured(outcome.Output.Text)
	metadata["question_parse_quality"] = string(parsed.Quality)
	if len(parsed.Questions) == 0 {
		return nil, core.StrategyError("question generation returned no usable questions", ErrNoQuestions)
	}
	return parsed.Questions, nil
}

func recordOutcome(metadata map[string]any, step string, outcome ai.Outcome[ai.TextResponse]) {
	metadata[step+"_provider"] = string(outcome.Provider)
	metadata[step+"_model"] = outcome.Output.Model
	if outcome.FallbackOccurred {
		metadata[step+"_fallback"] = true
		failed := make([]string, 0, len(outcome.Failures))
		for _, f := range outcome.Failures {
			failed = append(failed, fmt.Sprintf("%s:%s", f.Provider, f.Class))
		}
		metadata[step+"_failed_providers"] = failed
	}
}

func failedSources(results []core.ParseResult) []map[string]any {
	failed := []map[string]any{}
	for _, r := range results {
		if r.Success {
			continue
		}
		failed = append(failed, map[string]any{
			"index":        r.SourceIndex,
			"content_type": string(r.ContentType),
			"error":        r.Error,
		})
	}
	return failed
}

package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/parsers"
)

// FastVideoName identifies the fast single-call video pipeline.
const FastVideoName = "fast_video"

const (
	mediaTemperature   = 0.3
	mediaMaxTokens     = 8192
	defaultVideoTitle  = "YouTube Video Analysis"
	processingMethod   = "fast_video"
)

// FastSinglePipeline sends each video's audio to a multimodal model in one
// call that returns transcript, summary and questions together.
type FastSinglePipeline struct {
	jobs    JobStore
	fetcher *parsers.VideoFetcher
	media   ai.MediaAnalyzer
	opts    *options
	logger  *slog.Logger
}

var _ Strategy = (*FastSinglePipeline)(nil)

// NewFastSinglePipeline creates the fast video pipeline. The pipeline
// scores zero when media is nil or unavailable.
func NewFastSinglePipeline(jobs JobStore, fetcher *parsers.VideoFetcher, media ai.MediaAnalyzer, opts ...Option) *FastSinglePipeline {
	return &FastSinglePipeline{
		jobs:    jobs,
		fetcher: fetcher,
		media:   media,
		opts:    applyOptions(opts),
		logger:  slog.Default().With("component", "fast-video-pipeline"),
	}
}

// Name returns "fast_video".
func (f *FastSinglePipeline) Name() string {
	return FastVideoName
}

// SupportsContentType reports true for video only.
func (f *FastSinglePipeline) SupportsContentType(t core.ContentType) bool {
	return t == core.ContentTypeVideo
}

// CanProcessJob reports whether every source is a video.
func (f *FastSinglePipeline) CanProcessJob(sources []core.ContentSource) bool {
	return canProcess(f, sources)
}

func (f *FastSinglePipeline) available() bool {
	return f.opts.fastEnabled && f.media != nil && f.media.Available()
}

// PriorityScore favours single videos. It is zero unless the fast path is
// enabled and the multimodal back-end is configured.
func (f *FastSinglePipeline) PriorityScore(sources []core.ContentSource, _ core.ProcessingOptions) int {
	if !f.CanProcessJob(sources) || !f.available() {
		return 0
	}
	score := 80
	if len(sources) == 1 {
		score += 15
	}
	if len(sources) > 3 {
		score -= 20
	}
	return min(score, 100)
}

// ExpectedDuration is 30s per video plus 15s overhead.
func (f *FastSinglePipeline) ExpectedDuration(sources []core.ContentSource, _ core.ProcessingOptions) time.Duration {
	videos := 0
	for _, src := range sources {
		if src.ContentType == core.ContentTypeVideo {
			videos++
		}
	}
	return time.Duration(videos)*30*time.Second + 15*time.Second
}

// Info describes the fast pipeline.
func (f *FastSinglePipeline) Info() Info {
	return Info{
		Name:         FastVideoName,
		DisplayName:  "Fast Video Analysis",
		Description:  "Analyzes video audio with one multimodal call that returns transcript, summary and questions.",
		ContentTypes: []core.ContentType{core.ContentTypeVideo},
		Features: map[string]bool{
			"multi_source":      true,
			"mixed_content":     false,
			"parallel_parsing":  false,
			"provider_fallback": false,
			"enabled":           f.available(),
		},
		TypicalTime: "30-60 seconds per video",
	}
}

type videoAnalysis struct {
	url    string
	info   parsers.VideoInfo
	cached bool
	out    StructuredOutput
}

// Process analyzes every video in order and merges the results.
func (f *FastSinglePipeline) Process(ctx context.Context, jobID string) (result *core.ProcessingResult, err error) {
	start := time.Now()
	defer recoverResult(FastVideoName, start, &result)

	logger := f.logger.With("job_id", jobID)
	fail := func(err error) (*core.ProcessingResult, error) {
		logger.Error("fast video pipeline failed", "err", err, "took", time.Since(start))
		return core.NewFailedResult(FastVideoName, err, time.Since(start)), nil
	}

	if !f.available() {
		return fail(core.StrategyError("fast video path is not available", ErrFastPathDisabled))
	}
	job, err := loadJob(ctx, f.jobs, jobID)
	if err != nil {
		return fail(err)
	}
	for _, src := range job.Sources {
		if src.ContentType != core.ContentTypeVideo {
			return fail(core.StrategyError(
				fmt.Sprintf("fast video path only supports video sources, got %s", src.ContentType),
				ErrUnsupportedSource))
		}
	}

	progress := NewProgressReporter(f.jobs, f.opts.notifier, jobID)
	progress.Update(ctx, ProgressFastStart, "Starting video analysis")
	progress.Update(ctx, ProgressFastAnalyze, "Analyzing video content")

	prompt := videoAnalysisPrompt(job.Options, f.opts.defaultCounts)
	analyses := make([]videoAnalysis, 0, len(job.Sources))
	for i, src := range job.Sources {
		progress.Step(ctx, ProgressFastAnalyze, ProgressFastFinalize, i, len(job.Sources),
			fmt.Sprintf("Processing video %d of %d", i+1, len(job.Sources)))

		analysis, err := f.analyze(ctx, src.Reference, prompt)
		if err != nil {
			return fail(err)
		}
		logger.Info("video analyzed",
			"index", i,
			"video", analysis.info.ID,
			"cached", analysis.cached,
			"quality", analysis.out.Quality,
			"questions", len(analysis.out.Questions))
		analyses = append(analyses, analysis)
	}

	progress.Update(ctx, ProgressFastFinalize, "Generating final output")
	result = mergeAnalyses(analyses)
	result.StrategyUsed = FastVideoName
	result.Elapsed = time.Since(start)
	if result.ContentText == "" {
		return fail(core.StrategyError("video analysis returned no content", core.ErrNoContentExtracted))
	}

	logger.Info("fast video pipeline completed",
		"videos", len(analyses),
		"questions", len(result.Questions),
		"took", result.Elapsed)
	return result, nil
}

func (f *FastSinglePipeline) analyze(ctx context.Context, url, prompt string) (videoAnalysis, error) {
	info, err := f.fetcher.Probe(ctx, url)
	if err != nil {
		return videoAnalysis{}, err
	}
	audio, err := f.fetcher.Audio(ctx, info)
	if err != nil {
		return videoAnalysis{}, err
	}
	defer audio.Close()

	resp, err := f.media.Analyze(ctx, ai.MediaRequest{
		Path:        audio.Path,
		MIMEType:    audio.MIMEType,
		Prompt:      prompt,
		Temperature: mediaTemperature,
		MaxTokens:   mediaMaxTokens,
	})
	if err != nil {
		return videoAnalysis{}, core.ProviderError(
			fmt.Sprintf("%s media analysis failed", f.media.Name()), err)
	}

	out := ParseStructured(resp.Text)
	if out.Title == "" {
		out.Title = info.Title
	}
	if out.Title == "" {
		out.Title = defaultVideoTitle
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	out.Metadata["source_url"] = url
	out.Metadata["video_id"] = info.ID
	out.Metadata["duration"] = int(info.Duration.Seconds())
	out.Metadata["processing_method"] = processingMethod
	out.Metadata["parse_quality"] = string(out.Quality)
	out.Metadata["audio_cached"] = audio.Cached
	out.Metadata["media_provider"] = string(f.media.Name())

	return videoAnalysis{url: url, info: info, cached: audio.Cached, out: out}, nil
}

// mergeAnalyses returns a single video's fields directly. Several videos
// are joined with per-video headers and each question is tagged with its
// 1-based source_video.
func mergeAnalyses(analyses []videoAnalysis) *core.ProcessingResult {
	result := &core.ProcessingResult{Status: core.StatusSuccess}
	if len(analyses) == 0 {
		return result
	}

	if len(analyses) == 1 {
		a := analyses[0]
		result.Title = a.out.Title
		result.ContentText = a.out.Transcript
		if result.ContentText == "" {
			result.ContentText = a.out.Summary
		}
		result.Summary = a.out.Summary
		result.Questions = a.out.Questions
		result.Metadata = a.out.Metadata
		return result
	}

	var transcript, summary strings.Builder
	var questions []core.Question
	urls := make([]string, 0, len(analyses))
	for i, a := range analyses {
		urls = append(urls, a.url)
		fmt.Fprintf(&transcript, "\n\n=== VIDEO %d: %s ===\n\n", i+1, a.out.Title)
		transcript.WriteString(a.out.Transcript)

		if a.out.Summary != "" {
			fmt.Fprintf(&summary, "**Video %d Summary:**\n%s\n\n", i+1, a.out.Summary)
		}
		for _, q := range a.out.Questions {
			if q.Metadata == nil {
				q.Metadata = map[string]string{}
			}
			q.Metadata["source_video"] = fmt.Sprintf("%d", i+1)
			q.ID = fmt.Sprintf("q%d", len(questions)+1)
			questions = append(questions, q)
		}
	}

	result.Title = fmt.Sprintf("%s (+%d more)", analyses[0].out.Title, len(analyses)-1)
	result.ContentText = strings.TrimSpace(transcript.String())
	result.Summary = strings.TrimSpace(summary.String())
	result.Questions = questions
	result.Metadata = map[string]any{
		"source_urls":       urls,
		"video_count":       len(analyses),
		"processing_method": processingMethod,
	}
	return result
}

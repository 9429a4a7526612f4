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

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/metrics"
	"github.com/parkho-ai/contentengine/notify"
	"github.com/parkho-ai/contentengine/strategy"
)

// AutoStrategy requests automatic strategy selection.
const AutoStrategy = "auto"

// NoStrategy is recorded as StrategyUsed when a job fails before any
// strategy ran.
const NoStrategy = "none"

// State is a step in the life of one Process call.
type State string

const (
	StateSelecting         State = "selecting"
	StateExecutingPrimary  State = "executing_primary"
	StateExecutingFallback State = "executing_fallback"
	StateSucceeded         State = "succeeded"
	StateTerminallyFailed  State = "terminally_failed"
)

// JobStore is the subset of storage.JobRepository the orchestrator needs.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*core.Job, error)
	MarkSucceeded(ctx context.Context, id string, result *core.ProcessingResult) error
	MarkFailed(ctx context.Context, id string, message string, kind core.ErrorKind, result *core.ProcessingResult) error
}

// Selection is the outcome of strategy selection for one job.
type Selection struct {
	Strategy          strategy.Strategy
	Reason            string
	Scores            map[string]int
	FallbackAvailable bool
}

// Orchestrator selects a strategy for each job, runs it, optionally runs one
// fallback, and writes the job's terminal state exactly once.
type Orchestrator struct {
	jobs            JobStore
	strategies      []strategy.Strategy
	running         *RunningJobRegistry
	enableFallback  bool
	defaultStrategy string
	jobTimeout      time.Duration
	notifier        notify.Notifier
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFallback enables a single fallback attempt after a failed primary.
// Default is false.
func WithFallback(enabled bool) Option {
	return func(o *Orchestrator) {
		o.enableFallback = enabled
	}
}

// WithDefaultStrategy names the strategy used when a job does not name one.
// Empty or "auto" selects automatically.
func WithDefaultStrategy(name string) Option {
	return func(o *Orchestrator) {
		o.defaultStrategy = strings.TrimSpace(name)
	}
}

// WithJobTimeout bounds each job. Zero disables the bound.
func WithJobTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d < 0 {
			d = 0
		}
		o.jobTimeout = d
	}
}

// WithNotifier publishes job lifecycle events through n.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithMetrics records strategy and job metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "orchestrator")
	}
}

// NewOrchestrator creates an Orchestrator. Strategies are considered in the
// given order, which breaks score ties.
func NewOrchestrator(jobs JobStore, strategies []strategy.Strategy, opts ...Option) (*Orchestrator, error) {
	if jobs == nil {
		return nil, ErrJobStoreRequired
	}
	if len(strategies) == 0 {
		return nil, ErrNoStrategies
	}
	seen := make(map[string]bool, len(strategies))
	for _, s := range strategies {
		if seen[s.Name()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStrategy, s.Name())
		}
		seen[s.Name()] = true
	}

	o := &Orchestrator{
		jobs:       jobs,
		strategies: strategies,
		running:    NewRunningJobRegistry(),
		notifier:   notify.Nop{},
		logger:     slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Running returns the registry of in-flight jobs.
func (o *Orchestrator) Running() *RunningJobRegistry {
	return o.running
}

// Strategies returns the info of every registered strategy in order.
func (o *Orchestrator) Strategies() []strategy.Info {
	infos := make([]strategy.Info, 0, len(o.strategies))
	for _, s := range o.strategies {
		infos = append(infos, s.Info())
	}
	return infos
}

// Lookup returns the strategy registered under name.
func (o *Orchestrator) Lookup(name string) (strategy.Strategy, bool) {
	for _, s := range o.strategies {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Select picks the strategy for sources. An explicitly named strategy wins
// when it can process the job; otherwise the highest positive score wins and
// ties go to the earliest registered strategy.
func (o *Orchestrator) Select(sources []core.ContentSource, opts core.ProcessingOptions) (Selection, error) {
	scores := make(map[string]int, len(o.strategies))
	for _, s := range o.strategies {
		if s.CanProcessJob(sources) {
			scores[s.Name()] = s.PriorityScore(sources, opts)
		} else {
			scores[s.Name()] = 0
		}
	}

	requested := strings.TrimSpace(opts.Strategy)
	if requested == "" {
		requested = o.defaultStrategy
	}
	if requested != "" && requested != AutoStrategy {
		s, ok := o.Lookup(requested)
		switch {
		case !ok:
			o.logger.Warn("requested strategy is not registered, selecting automatically", "strategy", requested)
		case !s.CanProcessJob(sources):
			o.logger.Warn("requested strategy cannot process job, selecting automatically", "strategy", requested)
		default:
			return Selection{
				Strategy:          s,
				Reason:            fmt.Sprintf("explicitly requested strategy %s", requested),
				Scores:            scores,
				FallbackAvailable: o.fallbackFor(sources, opts, s) != nil,
			}, nil
		}
	}

	var best strategy.Strategy
	bestScore := 0
	for _, s := range o.strategies {
		if score := scores[s.Name()]; score > bestScore {
			best, bestScore = s, score
		}
	}
	if best == nil {
		return Selection{Scores: scores}, core.StrategyError("no strategy can process this job", ErrNoStrategy)
	}
	return Selection{
		Strategy:          best,
		Reason:            fmt.Sprintf("highest priority score %d", bestScore),
		Scores:            scores,
		FallbackAvailable: o.fallbackFor(sources, opts, best) != nil,
	}, nil
}

// fallbackFor returns the best-scoring other strategy that can process the
// job, or nil when fallback is disabled or none qualifies.
func (o *Orchestrator) fallbackFor(sources []core.ContentSource, opts core.ProcessingOptions, primary strategy.Strategy) strategy.Strategy {
	if !o.enableFallback {
		return nil
	}
	var best strategy.Strategy
	bestScore := 0
	for _, s := range o.strategies {
		if s.Name() == primary.Name() || !s.CanProcessJob(sources) {
			continue
		}
		if score := s.PriorityScore(sources, opts); score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}

// Process runs jobID to a terminal state and returns its result. It fails
// immediately with ErrJobAlreadyRunning when the job is already in flight;
// every other failure is reported through the returned result.
func (o *Orchestrator) Process(ctx context.Context, jobID string) (*core.ProcessingResult, error) {
	if !o.running.Add(jobID) {
		o.metrics.ObserveRejected("already_running")
		return nil, fmt.Errorf("%w: %s", ErrJobAlreadyRunning, jobID)
	}
	defer o.running.Remove(jobID)
	return o.process(ctx, jobID), nil
}

// process assumes jobID is already registered as running.
func (o *Orchestrator) process(ctx context.Context, jobID string) *core.ProcessingResult {
	done := o.metrics.JobStarted()
	defer done()

	if o.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	logger := o.logger.With("job_id", jobID)
	o.publish(ctx, jobID, notify.NewEvent(jobID, notify.EventStarted, 0, "Job started"))

	state := StateSelecting
	logger.Debug("job state", "state", state)

	job, err := o.jobs.GetJob(ctx, jobID)
	if err != nil {
		failed := core.NewFailedResult("", core.StrategyError(fmt.Sprintf("job %s not found", jobID), err), time.Since(start))
		return o.finish(ctx, jobID, failed, nil, start)
	}

	selection, err := o.Select(job.Sources, job.Options)
	if err != nil {
		logger.Warn("no strategy selected", "err", err, "scores", selection.Scores)
		return o.finish(ctx, jobID, core.NewFailedResult("", err, time.Since(start)), map[string]any{
			"strategy_scores": selection.Scores,
		}, start)
	}

	primary := selection.Strategy
	meta := map[string]any{
		"selected_strategy":  primary.Name(),
		"selection_reason":   selection.Reason,
		"strategy_scores":    selection.Scores,
		"fallback_available": selection.FallbackAvailable,
		"fallback_used":      false,
		"expected_seconds":   primary.ExpectedDuration(job.Sources, job.Options).Seconds(),
	}
	logger.Info("strategy selected", "strategy", primary.Name(), "reason", selection.Reason)

	state = StateExecutingPrimary
	logger.Debug("job state", "state", state)
	result := o.run(ctx, primary, jobID)
	if !failed(result) {
		return o.finish(ctx, jobID, result, meta, start)
	}
	logger.Warn("primary strategy failed", "strategy", primary.Name(), "err", result.Error)

	fallback := o.fallbackFor(job.Sources, job.Options, primary)
	if fallback == nil || ctx.Err() != nil {
		return o.finish(ctx, jobID, result, meta, start)
	}

	state = StateExecutingFallback
	logger.Info("running fallback strategy", "state", state, "primary", primary.Name(), "fallback", fallback.Name())
	o.metrics.ObserveFallback(primary.Name(), fallback.Name())
	meta["fallback_used"] = true
	meta["fallback_strategy"] = fallback.Name()
	meta["primary_error"] = result.Error

	return o.finish(ctx, jobID, o.run(ctx, fallback, jobID), meta, start)
}

// run executes one strategy and normalizes its outcome into a result.
func (o *Orchestrator) run(ctx context.Context, s strategy.Strategy, jobID string) (result *core.ProcessingResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("strategy panicked", "job_id", jobID, "strategy", s.Name(), "panic", r)
			result = core.NewFailedResult(s.Name(),
				core.StrategyError(fmt.Sprintf("%s failed: %v", s.Name(), r), strategy.ErrStrategyPanic),
				time.Since(start))
		}
		o.metrics.ObserveStrategy(s.Name(), !failed(result))
	}()

	result, err := s.Process(ctx, jobID)
	switch {
	case err != nil:
		result = core.NewFailedResult(s.Name(), err, time.Since(start))
	case result == nil:
		result = core.NewFailedResult(s.Name(), core.StrategyError(s.Name()+" returned no result", nil), time.Since(start))
	case result.Status != core.StatusFailed && result.ContentText == "":
		result = core.NewFailedResult(s.Name(),
			core.StrategyError(s.Name()+" returned no content", core.ErrNoContentExtracted), time.Since(start))
	}
	if result.StrategyUsed == "" {
		result.StrategyUsed = s.Name()
	}
	return result
}

// finish writes the terminal state once and publishes the final event. The
// stored result is a copy carrying the orchestration metadata.
func (o *Orchestrator) finish(ctx context.Context, jobID string, result *core.ProcessingResult, meta map[string]any, start time.Time) *core.ProcessingResult {
	final := *result
	final.Metadata = maps.Clone(result.Metadata)
	if final.Metadata == nil {
		final.Metadata = make(map[string]any, len(meta))
	}
	maps.Copy(final.Metadata, meta)
	if final.StrategyUsed == "" {
		final.StrategyUsed = NoStrategy
	}

	elapsed := time.Since(start)
	logger := o.logger.With("job_id", jobID, "strategy", final.StrategyUsed)

	// The terminal write must land even when the job context expired.
	writeCtx := context.WithoutCancel(ctx)
	if failed(&final) {
		final.Status = core.StatusFailed
		if err := o.jobs.MarkFailed(writeCtx, jobID, final.Error, final.ErrorKind, &final); err != nil {
			logger.Error("failed to record job failure", "err", err)
		}
		o.publish(writeCtx, jobID, notify.NewEvent(jobID, notify.EventFailed, 100, final.Error))
		logger.Warn("job failed", "state", StateTerminallyFailed, "err", final.Error, "kind", final.ErrorKind, "took", elapsed)
	} else {
		if err := o.jobs.MarkSucceeded(writeCtx, jobID, &final); err != nil {
			logger.Error("failed to record job success", "err", err)
		}
		o.publish(writeCtx, jobID, notify.NewEvent(jobID, notify.EventSucceeded, 100, "Job completed"))
		logger.Info("job succeeded", "state", StateSucceeded, "status", final.Status, "took", elapsed)
	}
	o.metrics.ObserveJob(final.StrategyUsed, string(final.Status), elapsed)
	return &final
}

func (o *Orchestrator) publish(ctx context.Context, jobID string, event notify.Event) {
	if err := o.notifier.Publish(ctx, jobID, event); err != nil {
		o.logger.Debug("notification failed", "job_id", jobID, "type", event.Type, "err", err)
	}
}

// failed reports whether result counts as a failure. Partial results with
// content are terminal successes.
func failed(result *core.ProcessingResult) bool {
	return result == nil || result.Status == core.StatusFailed || result.ContentText == ""
}

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
package contentengine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/ai/llm"
	"github.com/parkho-ai/contentengine/cache"
	"github.com/parkho-ai/contentengine/collection"
	"github.com/parkho-ai/contentengine/config"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/metrics"
	"github.com/parkho-ai/contentengine/notify"
	"github.com/parkho-ai/contentengine/orchestrator"
	"github.com/parkho-ai/contentengine/parsers"
	"github.com/parkho-ai/contentengine/parsing"
	"github.com/parkho-ai/contentengine/storage"
	"github.com/parkho-ai/contentengine/storage/badger"
	"github.com/parkho-ai/contentengine/strategy"
)

// releaseTimeout bounds how long Close waits for running jobs.
const releaseTimeout = 30 * time.Second

// Engine wires the job store, AI providers, parsers, strategies and the
// orchestrator into one unit.
type Engine struct {
	config       *config.Config
	backend      *badger.Backend
	jobs         storage.JobRepository
	provider     ai.AIProvider
	cache        *cache.ArtifactCache
	orchestrator *orchestrator.Orchestrator
	executor     *orchestrator.Executor
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider    ai.AIProvider
	videoSource parsers.VideoSource
	notifier    notify.Notifier
	metrics     *metrics.Metrics
	collection  collection.Provider
}

// WithAIProvider replaces the provider built from the AI config.
func WithAIProvider(p ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = p
	}
}

// WithVideoSource replaces the YouTube client.
func WithVideoSource(s parsers.VideoSource) EngineOption {
	return func(o *engineOptions) {
		o.videoSource = s
	}
}

// WithNotifier publishes job events through n.
func WithNotifier(n notify.Notifier) EngineOption {
	return func(o *engineOptions) {
		o.notifier = n
	}
}

// WithMetrics records engine metrics.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

// WithCollectionProvider replaces the HTTP collection client.
func WithCollectionProvider(p collection.Provider) EngineOption {
	return func(o *engineOptions) {
		o.collection = p
	}
}

// NewEngine validates cfg and assembles every component. An empty DBPath
// keeps jobs in memory.
func NewEngine(ctx context.Context, cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{
		videoSource: parsers.NewYouTubeSource(),
		notifier:    notify.NewLogNotifier(),
	}
	for _, opt := range opts {
		opt(options)
	}

	e := &Engine{
		config: cfg,
		logger: slog.Default().With("component", "engine"),
	}

	backend, err := badger.OpenBackend(cfg.DBPath, cfg.DBPath == "")
	if err != nil {
		return nil, fmt.Errorf("failed to open job store: %w", err)
	}
	e.backend = backend

	e.jobs, err = badger.NewJobRepository(backend)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to create job repository: %w", err)
	}

	e.provider = options.provider
	if e.provider == nil {
		e.provider, err = llm.NewProvider(ctx, cfg.AI, llm.WithFailureObserver(options.metrics.ObserveProviderFailure))
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to create AI provider: %w", err)
		}
	}

	fetcherOpts := []parsers.FetcherOption{
		parsers.WithMaxDuration(cfg.MaxVideoDuration()),
		parsers.WithMaxAudioBytes(cfg.MaxAudioBytes()),
		parsers.WithTempDir(cfg.TempDir),
	}
	if cfg.CacheEnabled {
		e.cache, err = cache.New(cfg.CacheDir,
			cache.WithTTL(cfg.CacheTTL),
			cache.WithObserver(options.metrics.ObserveCacheLookup))
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to open artifact cache: %w", err)
		}
		fetcherOpts = append(fetcherOpts, parsers.WithArtifactCache(e.cache))
	}
	fetcher := parsers.NewVideoFetcher(options.videoSource, fetcherOpts...)

	registry := parsing.NewRegistry(
		parsers.NewPDFParser(cfg.FilesDir, parsers.DefaultMaxPDFSize),
		parsers.NewDOCXParser(cfg.FilesDir, parsers.DefaultMaxDOCXSize),
		parsers.NewWebParser(),
		parsers.NewVideoParser(fetcher, e.provider.Transcription(), ""),
	)
	coordinator, err := parsing.NewCoordinator(registry,
		parsing.WithConcurrency(cfg.ParseConcurrency),
		parsing.WithObserver(options.metrics.ObserveParse))
	if err != nil {
		e.Close()
		return nil, err
	}

	strategyOpts := []strategy.Option{
		strategy.WithNotifier(options.notifier),
		strategy.WithFastPath(cfg.FastPathEnabled),
	}
	if len(cfg.QuestionCounts) > 0 {
		strategyOpts = append(strategyOpts, strategy.WithDefaultQuestionCounts(cfg.QuestionCounts))
	}
	if options.collection == nil && cfg.CollectionURL != "" {
		options.collection = collection.NewClient(cfg.CollectionURL, collection.WithUserID(cfg.CollectionUserID))
	}
	if options.collection != nil {
		strategyOpts = append(strategyOpts, strategy.WithCollection(options.collection))
	}

	strategies := []strategy.Strategy{
		strategy.NewFastSinglePipeline(e.jobs, fetcher, e.provider.Media(), strategyOpts...),
		strategy.NewGeneralPipeline(e.jobs, coordinator, e.provider.Text(), strategyOpts...),
	}

	e.orchestrator, err = orchestrator.NewOrchestrator(e.jobs, strategies,
		orchestrator.WithFallback(cfg.EnableFallback),
		orchestrator.WithDefaultStrategy(cfg.DefaultStrategy),
		orchestrator.WithJobTimeout(cfg.JobTimeout),
		orchestrator.WithNotifier(options.notifier),
		orchestrator.WithMetrics(options.metrics))
	if err != nil {
		e.Close()
		return nil, err
	}

	e.executor, err = orchestrator.NewExecutor(e.orchestrator, orchestrator.WithPoolSize(cfg.MaxConcurrentJobs))
	if err != nil {
		e.Close()
		return nil, err
	}

	e.logger.Info("engine ready",
		"db", cfg.DBPath,
		"cache", cfg.CacheEnabled,
		"fallback", cfg.EnableFallback,
		"workers", cfg.MaxConcurrentJobs)
	return e, nil
}

// CreateJob validates job, assigns an id when it has none and stores it.
func (e *Engine) CreateJob(ctx context.Context, job *core.Job) (*core.Job, error) {
	if job != nil && job.ID == "" {
		job.ID = uuid.NewString()
	}
	if err := core.ValidateJob(job); err != nil {
		return nil, err
	}
	return e.jobs.CreateJob(ctx, job)
}

// Submit stores job and runs it on the worker pool.
func (e *Engine) Submit(ctx context.Context, job *core.Job) (*orchestrator.Handle, error) {
	created, err := e.CreateJob(ctx, job)
	if err != nil {
		return nil, err
	}
	return e.executor.Submit(ctx, created.ID)
}

// Process stores job and runs it to completion on the calling goroutine.
func (e *Engine) Process(ctx context.Context, job *core.Job) (*core.ProcessingResult, error) {
	created, err := e.CreateJob(ctx, job)
	if err != nil {
		return nil, err
	}
	return e.orchestrator.Process(ctx, created.ID)
}

// Jobs returns the job repository.
func (e *Engine) Jobs() storage.JobRepository {
	return e.jobs
}

func (e *Engine) Orchestrator() *orchestrator.Orchestrator {
	return e.orchestrator
}

func (e *Engine) Executor() *orchestrator.Executor {
	return e.executor
}

// Cache returns the artifact cache, or nil when caching is disabled.
func (e *Engine) Cache() *cache.ArtifactCache {
	return e.cache
}

// StartCacheSweeper removes expired artifacts until ctx is cancelled. The
// returned channel is closed when the sweeper stops.
func (e *Engine) StartCacheSweeper(ctx context.Context) <-chan struct{} {
	if e.cache == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return e.cache.StartSweeper(ctx, e.config.CacheSweepInterval)
}

// Close waits for running jobs and releases every component.
func (e *Engine) Close() error {
	if e.executor != nil {
		if err := e.executor.Release(releaseTimeout); err != nil {
			e.logger.Error("error releasing executor", "err", err)
		}
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
		}
	}
	if e.cache != nil {
		e.cache.Release()
	}
	if e.jobs != nil {
		if err := e.jobs.Close(); err != nil {
			e.logger.Error("error closing job repository", "err", err)
			return err
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}

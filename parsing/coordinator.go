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

package parsing

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/parkho-ai/contentengine/core"
	"golang.org/x/sync/errgroup"
)

// Coordinator parses many sources concurrently and tolerates partial failure.
type Coordinator struct {
	registry *Registry
	limit    int
	observe  Observer
	logger   *slog.Logger
}

// Observer is called once per parsed source with its content type and outcome.
type Observer func(contentType string, ok bool)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConcurrency bounds the number of sources parsed at once.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n < 1 {
			n = 1
		}
		c.limit = n
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "parsing-coordinator")
	}
}

// WithObserver registers a per-source outcome callback.
func WithObserver(f Observer) Option {
	return func(c *Coordinator) {
		c.observe = f
	}
}

// NewCoordinator creates a Coordinator that resolves parsers from registry.
func NewCoordinator(registry *Registry, opts ...Option) (*Coordinator, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	c := &Coordinator{
		registry: registry,
		limit:    max(runtime.NumCPU(), 1),
		logger:   slog.Default().With("component", "parsing-coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Registry returns the parser registry.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// ParseAll parses every source concurrently and returns one result per
// source, indexed by source order. Parser errors and panics become failed
// results; only an empty source list or a cancelled context fail the call.
func (c *Coordinator) ParseAll(ctx context.Context, sources []core.ContentSource) ([]core.ParseResult, error) {
	if len(sources) == 0 {
		return nil, core.ValidationError("no content sources provided", core.ErrNoSources)
	}

	start := time.Now()
	c.logger.Info("parsing started", "sources", len(sources))

	results := make([]core.ParseResult, len(sources))
	g := new(errgroup.Group)
	g.SetLimit(c.limit)

	for i, source := range sources {
		g.Go(func() error {
			results[i] = c.parseOne(ctx, i, source)
			if c.observe != nil {
				c.observe(string(source.ContentType), results[i].Success)
			}
			return nil
		})
	}
	// Workers never return errors; failures are recorded per source.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	c.logger.Info("parsing completed",
		"sources", len(sources),
		"succeeded", SuccessCount(results),
		"took", time.Since(start))

	return results, nil
}

func (c *Coordinator) parseOne(ctx context.Context, index int, source core.ContentSource) (result core.ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("parser panicked", "index", index, "type", source.ContentType, "panic", r)
			result = failedResult(index, source, fmt.Errorf("parser panicked: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failedResult(index, source, err)
	}

	if err := core.ValidateSource(source); err != nil {
		c.logger.Warn("invalid source", "index", index, "type", source.ContentType, "err", err)
		return failedResult(index, source, err)
	}

	parser, ok := c.registry.Resolve(source.ContentType)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrNoParser, source.ContentType)
		c.logger.Warn("unsupported content type", "index", index, "type", source.ContentType)
		return failedResult(index, source, err)
	}

	result, err := parser.Parse(ctx, source)
	if err != nil {
		c.logger.Warn("source parse failed",
			"index", index,
			"type", source.ContentType,
			"reference", truncateRef(source.Reference),
			"err", err)
		return failedResult(index, source, err)
	}

	result.SourceIndex = index
	result.ContentType = source.ContentType
	result.Collection = result.Collection || source.Collection
	if !result.Success && result.Error == "" {
		result.Error = "parser reported failure"
	}
	if result.Success && result.Content == "" {
		result.Success = false
		result.Error = core.ErrNoContentExtracted.Error()
	}
	return result
}

func failedResult(index int, source core.ContentSource, err error) core.ParseResult {
	return core.ParseResult{
		SourceIndex: index,
		ContentType: source.ContentType,
		Success:     false,
		Error:       core.Message(err),
		Collection:  source.Collection,
	}
}

func truncateRef(ref string) string {
	if len(ref) > 100 {
		return ref[:100]
	}
	return ref
}

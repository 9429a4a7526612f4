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
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/parkho-ai/contentengine/core"
)

// Outcome is a successful Chain execution.
type Outcome[Out any] struct {
	Output           Out
	Provider         ProviderName
	FallbackOccurred bool
	// Failures lists the providers that were tried and failed before Provider.
	Failures []ProviderFailure
	Elapsed  time.Duration
}

// FailureObserver is notified of every provider failure inside a Chain.
type FailureObserver func(capability Capability, provider ProviderName, class FailureClass)

// Chain tries an ordered list of providers for one capability until one
// succeeds. A Chain holds no mutable state and is safe for concurrent use.
type Chain[Req, Out any] struct {
	capability Capability
	providers  map[ProviderName]Provider[Req, Out]
	order      []ProviderName
	classify   Classifier
	observe    FailureObserver
	logger     *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*chainOptions)

type chainOptions struct {
	classify Classifier
	observe  FailureObserver
	logger   *slog.Logger
}

// WithClassifier sets the function used to classify provider errors.
func WithClassifier(c Classifier) ChainOption {
	return func(o *chainOptions) {
		if c != nil {
			o.classify = c
		}
	}
}

// WithFailureObserver registers a callback for provider failures.
func WithFailureObserver(f FailureObserver) ChainOption {
	return func(o *chainOptions) {
		o.observe = f
	}
}

// WithChainLogger sets a custom logger.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(o *chainOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewChain creates a Chain for capability. defaultOrder is the try-order used
// when no preference is given; registered providers missing from it are
// appended in registration order.
func NewChain[Req, Out any](capability Capability, defaultOrder []ProviderName, providers []Provider[Req, Out], opts ...ChainOption) (*Chain[Req, Out], error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	options := &chainOptions{
		classify: DefaultClassifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	byName := make(map[ProviderName]Provider[Req, Out], len(providers))
	for _, p := range providers {
		if _, dup := byName[p.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvider, p.Name())
		}
		byName[p.Name()] = p
	}

	order := make([]ProviderName, 0, len(providers))
	for _, name := range defaultOrder {
		if _, ok := byName[name]; ok && !slices.Contains(order, name) {
			order = append(order, name)
		}
	}
	for _, p := range providers {
		if !slices.Contains(order, p.Name()) {
			order = append(order, p.Name())
		}
	}

	return &Chain[Req, Out]{
		capability: capability,
		providers:  byName,
		order:      order,
		classify:   options.classify,
		observe:    options.observe,
		logger:     options.logger.With("component", "provider-chain", "capability", string(capability)),
	}, nil
}

// Capability returns the capability this chain serves.
func (c *Chain[Req, Out]) Capability() Capability {
	return c.capability
}

// TryOrder returns the order in which providers will be tried for the given
// preference. Unavailable providers are included; Execute skips them.
func (c *Chain[Req, Out]) TryOrder(preferred ProviderName) []ProviderName {
	if _, ok := c.providers[preferred]; !ok || preferred == "" {
		return slices.Clone(c.order)
	}
	order := make([]ProviderName, 0, len(c.order))
	order = append(order, preferred)
	for _, name := range c.order {
		if name != preferred {
			order = append(order, name)
		}
	}
	return order
}

// Available returns the names of providers that are currently configured.
func (c *Chain[Req, Out]) Available() []ProviderName {
	var names []ProviderName
	for _, name := range c.order {
		if c.providers[name].Available() {
			names = append(names, name)
		}
	}
	return names
}

// Execute invokes providers in try-order until one succeeds.
// It fails only when every provider was skipped or failed, and then returns a
// single aggregate *core.Error wrapping ErrAllProvidersFailed.
func (c *Chain[Req, Out]) Execute(ctx context.Context, req Req, preferred ProviderName) (Outcome[Out], error) {
	start := time.Now()
	var failures []ProviderFailure
	var causes []error
	attempted := 0

	for _, name := range c.TryOrder(preferred) {
		provider := c.providers[name]
		if !provider.Available() {
			c.logger.Debug("skipping unconfigured provider", "provider", name)
			continue
		}
		if err := ctx.Err(); err != nil {
			causes = append(causes, err)
			break
		}

		attempted++
		out, err := c.invoke(ctx, provider, req)
		if err == nil {
			if attempted > 1 {
				c.logger.Info("provider succeeded after fallback", "provider", name, "failed", len(failures))
			}
			return Outcome[Out]{
				Output:           out,
				Provider:         name,
				FallbackOccurred: attempted > 1,
				Failures:         failures,
				Elapsed:          time.Since(start),
			}, nil
		}

		failure := ProviderFailure{Provider: name, Class: c.classify(err), Err: err}
		failures = append(failures, failure)
		causes = append(causes, &failure)
		if c.observe != nil {
			c.observe(c.capability, name, failure.Class)
		}
		c.logger.Warn("provider failed, trying next", "provider", name, "class", failure.Class, "err", err)
	}

	var zero Outcome[Out]
	if attempted == 0 {
		c.logger.Error("no configured providers", "order", c.order)
	} else {
		c.logger.Error("all providers failed", "attempted", attempted)
	}
	causes = append([]error{ErrAllProvidersFailed}, causes...)
	return zero, core.AggregateFailure(fmt.Sprintf("all %s providers failed", c.capability), causes...)
}

// invoke calls provider and converts a panic into an error.
func (c *Chain[Req, Out]) invoke(ctx context.Context, provider Provider[Req, Out], req Req) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", provider.Name(), r)
		}
	}()
	return provider.Invoke(ctx, req)
}

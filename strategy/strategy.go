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
	"time"

	"github.com/parkho-ai/contentengine/core"
)

// Strategy is one complete pipeline for turning a job's sources into a
// processing result.
type Strategy interface {
	// Name is the stable identifier recorded as StrategyUsed.
	Name() string

	// SupportsContentType reports whether the strategy can handle t.
	SupportsContentType(t core.ContentType) bool

	// CanProcessJob reports whether every source is supported.
	CanProcessJob(sources []core.ContentSource) bool

	// PriorityScore rates the strategy for the job in 0..100.
	// Zero means it cannot or should not run.
	PriorityScore(sources []core.ContentSource, opts core.ProcessingOptions) int

	// Process runs the pipeline for jobID. A returned error and a result
	// with StatusFailed are both failures.
	Process(ctx context.Context, jobID string) (*core.ProcessingResult, error)

	// ExpectedDuration estimates the wall-clock time for sources.
	ExpectedDuration(sources []core.ContentSource, opts core.ProcessingOptions) time.Duration

	// Info describes the strategy's capabilities.
	Info() Info
}

// Info describes a strategy for listings and logs.
type Info struct {
	Name         string             `json:"name"`
	DisplayName  string             `json:"display_name"`
	Description  string             `json:"description"`
	ContentTypes []core.ContentType `json:"content_types"`
	Features     map[string]bool    `json:"features"`
	TypicalTime  string             `json:"typical_time"`
}

// JobStore is the subset of storage.JobRepository a strategy needs.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*core.Job, error)
	UpdateProgress(ctx context.Context, id string, percent float64, message string) error
}

// canProcess reports whether s supports every source. An empty list is not
// processable.
func canProcess(s Strategy, sources []core.ContentSource) bool {
	if len(sources) == 0 {
		return false
	}
	for _, src := range sources {
		if !s.SupportsContentType(src.ContentType) {
			return false
		}
	}
	return true
}

func distinctTypes(sources []core.ContentSource) map[core.ContentType]bool {
	types := make(map[core.ContentType]bool, len(sources))
	for _, src := range sources {
		types[src.ContentType] = true
	}
	return types
}

func loadJob(ctx context.Context, jobs JobStore, jobID string) (*core.Job, error) {
	job, err := jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, core.StrategyError(fmt.Sprintf("job %s not found", jobID), fmt.Errorf("%w: %w", ErrJobNotFound, err))
	}
	return job, nil
}

// recoverResult converts a panic in a strategy into a failed result.
func recoverResult(name string, start time.Time, result **core.ProcessingResult) {
	if r := recover(); r != nil {
		err := core.StrategyError(fmt.Sprintf("%s failed: %v", name, r), ErrStrategyPanic)
		*result = core.NewFailedResult(name, err, time.Since(start))
	}
}

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
	"log/slog"
	"sync"
	"time"

	"github.com/parkho-ai/contentengine/notify"
	"github.com/parkho-ai/contentengine/storage"
)

// Progress milestones for the general pipeline.
const (
	ProgressParsing   = 10
	ProgressContext   = 20
	ProgressSummary   = 40
	ProgressQuestions = 70
	ProgressFinalize  = 90
)

// Progress milestones for the fast pipeline. Per-video progress is spread
// between ProgressFastAnalyze and ProgressFastFinalize.
const (
	ProgressFastStart    = 0
	ProgressFastAnalyze  = 25
	ProgressFastFinalize = 75
)

// ProgressReporter writes job progress to the store and the notifier.
// Both writes are best-effort; failures are logged and never returned.
type ProgressReporter struct {
	jobs      JobStore
	notifier  notify.Notifier
	jobID     string
	current   float64
	startTime time.Time
	mu        sync.Mutex
	logger    *slog.Logger
}

// NewProgressReporter creates a reporter for jobID. notifier may be nil.
func NewProgressReporter(jobs JobStore, notifier notify.Notifier, jobID string) *ProgressReporter {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ProgressReporter{
		jobs:      jobs,
		notifier:  notifier,
		jobID:     jobID,
		startTime: time.Now(),
		logger:    slog.Default().With("component", "progress", "job_id", jobID),
	}
}

// Update records percent (clamped to 0..100) with a message.
func (p *ProgressReporter) Update(ctx context.Context, percent float64, message string) {
	percent = storage.ClampProgress(percent)

	p.mu.Lock()
	p.current = percent
	p.mu.Unlock()

	if err := p.jobs.UpdateProgress(ctx, p.jobID, percent, message); err != nil {
		p.logger.Warn("progress update failed", "progress", percent, "err", err)
	}
	event := notify.NewEvent(p.jobID, notify.EventProgress, percent, message)
	if err := p.notifier.Publish(ctx, p.jobID, event); err != nil {
		p.logger.Debug("progress notification failed", "err", err)
	}
}

// Step reports progress for item i of n spread across [from, to).
func (p *ProgressReporter) Step(ctx context.Context, from, to float64, i, n int, message string) {
	if n <= 0 {
		p.Update(ctx, from, message)
		return
	}
	p.Update(ctx, from+(to-from)*float64(i)/float64(n), message)
}

// Current returns the last reported percentage.
func (p *ProgressReporter) Current() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Elapsed returns the time since the reporter was created.
func (p *ProgressReporter) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

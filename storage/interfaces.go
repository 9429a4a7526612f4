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

package storage

import (
	"context"

	"github.com/parkho-ai/contentengine/core"
)

// Repository provides operations shared by all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository. It does not close a
	// shared backend.
	Close() error
}

// JobRepository persists processing jobs and their terminal results.
type JobRepository interface {
	Repository

	// CreateJob stores a new job in the pending state.
	// Sets CreatedAt and UpdatedAt if not already set.
	// Returns ErrDuplicateKey if a job with the same ID exists.
	CreateJob(ctx context.Context, job *core.Job) (*core.Job, error)

	// GetJob retrieves a job by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id string) (*core.Job, error)

	// UpdateProgress records progress for a running job. percent is clamped
	// to 0..100 and a pending job moves to processing.
	// Returns ErrJobTerminal once the job has succeeded or failed.
	UpdateProgress(ctx context.Context, id string, percent float64, message string) error

	// MarkSucceeded stores the result and moves the job to succeeded.
	// Returns ErrJobTerminal if a terminal state was already written.
	MarkSucceeded(ctx context.Context, id string, result *core.ProcessingResult) error

	// MarkFailed stores the failure and moves the job to failed. result may
	// be nil.
	// Returns ErrJobTerminal if a terminal state was already written.
	MarkFailed(ctx context.Context, id string, message string, kind core.ErrorKind, result *core.ProcessingResult) error

	// ListJobs returns up to limit jobs, most recently created first.
	ListJobs(ctx context.Context, limit int) ([]*core.Job, error)
}

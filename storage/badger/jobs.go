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

package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
	now     func() time.Time
	logger  *slog.Logger
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a job repository on a shared backend.
func NewJobRepository(backend *Backend) (storage.JobRepository, error) {
	return newJobRepository(backend)
}

func newJobRepository(backend *Backend) (*JobRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &JobRepository{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  slog.Default().With("component", "job-repository"),
	}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *JobRepository) Close() error {
	return nil
}

// CreateJob stores a new pending job.
func (r *JobRepository) CreateJob(ctx context.Context, job *core.Job) (*core.Job, error) {
	if job == nil || job.ID == "" {
		return nil, core.ValidationError("job id is required", nil)
	}

	stored := *job
	now := r.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	stored.Status = core.JobPending
	stored.Progress = 0

	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeJobKey(stored.ID)
		if _, err := tx.Get(key); err == nil {
			return fmt.Errorf("%w: job %s", storage.ErrDuplicateKey, stored.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		value, err := storage.MarshalJob(&stored)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Set(makeJobCreatedKey(stored.CreatedAt, stored.ID), nil)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("job created", "job_id", stored.ID, "sources", len(stored.Sources))
	return &stored, nil
}

// GetJob retrieves a job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id string) (*core.Job, error) {
	var job *core.Job
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		job, err = readJob(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateProgress records progress and moves a pending job to processing.
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, percent float64, message string) error {
	return r.modify(ctx, id, func(job *core.Job) {
		job.Status = core.JobProcessing
		job.Progress = storage.ClampProgress(percent)
		job.Message = message
	})
}

// MarkSucceeded writes the terminal success state.
func (r *JobRepository) MarkSucceeded(ctx context.Context, id string, result *core.ProcessingResult) error {
	err := r.modify(ctx, id, func(job *core.Job) {
		job.Status = core.JobSucceeded
		job.Progress = 100
		job.Message = "completed"
		job.Result = result
		job.Error = ""
		job.ErrorKind = ""
		if result != nil && result.Title != "" {
			job.Title = result.Title
		}
	})
	if err == nil {
		r.logger.Info("job succeeded", "job_id", id)
	}
	return err
}

// MarkFailed writes the terminal failure state.
func (r *JobRepository) MarkFailed(ctx context.Context, id string, message string, kind core.ErrorKind, result *core.ProcessingResult) error {
	err := r.modify(ctx, id, func(job *core.Job) {
		job.Status = core.JobFailed
		job.Message = "failed"
		job.Result = result
		job.Error = message
		job.ErrorKind = kind
	})
	if err == nil {
		r.logger.Info("job failed", "job_id", id, "kind", kind, "error", message)
	}
	return err
}

// ListJobs returns up to limit jobs, newest first. A non-positive limit
// returns every job.
func (r *JobRepository) ListJobs(ctx context.Context, limit int) ([]*core.Job, error) {
	var jobs []*core.Job
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		opts.Prefix = []byte(jobCreatedPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration seeks to the largest key with the prefix.
		seek := append([]byte(jobCreatedPrefix+":"), 0xFF)
		for iter.Seek(seek); iter.Valid(); iter.Next() {
			if limit > 0 && len(jobs) >= limit {
				break
			}
			id := jobIDFromCreatedKey(iter.Item().KeyCopy(nil))
			job, err := readJob(tx, id)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			jobs = append(jobs, job)
		}
		return nil
	})
	return jobs, err
}

// modify applies fn to a non-terminal job and stores it.
func (r *JobRepository) modify(ctx context.Context, id string, fn func(job *core.Job)) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		job, err := readJob(tx, id)
		if err != nil {
			return err
		}
		if job.Status.Terminal() {
			return fmt.Errorf("%w: job %s is %s", storage.ErrJobTerminal, id, job.Status)
		}

		fn(job)
		job.UpdatedAt = r.now()

		value, err := storage.MarshalJob(job)
		if err != nil {
			return err
		}
		return tx.Set(makeJobKey(id), value)
	})
}

func readJob(tx *badger.Txn, id string) (*core.Job, error) {
	item, err := tx.Get(makeJobKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: job %s", storage.ErrNotFound, id)
		}
		return nil, err
	}

	var job *core.Job
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		job, unmarshalErr = storage.UnmarshalJob(val)
		return unmarshalErr
	})
	return job, err
}

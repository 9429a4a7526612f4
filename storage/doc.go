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

// Package storage provides the storage abstraction layer for contentengine.
//
// This package defines repository interfaces that decouple the job store
// from the orchestration logic. The engine only needs create, read and
// update operations on jobs; any backend that provides them can be used.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces:
//
//	jobs, err := badger.NewJobRepository(backend)  // returns storage.JobRepository
//
// Internal constructors may return concrete types since they are only used
// within the implementation package.
//
// # Terminal transitions
//
// A job moves pending → processing → succeeded | failed. The terminal
// transition is written exactly once; later MarkSucceeded, MarkFailed or
// UpdateProgress calls return ErrJobTerminal and leave the stored job
// unchanged.
//
// # Error Handling
//
// Implementations return the sentinel errors defined in errors.go, wrapped
// with context where useful:
//
//	job, err := jobs.GetJob(ctx, id)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // handle missing job
//	}
package storage

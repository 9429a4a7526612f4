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
	"sort"
	"sync"
	"time"
)

// RunningJobRegistry tracks the ids of jobs currently being processed.
// It is safe for concurrent use.
type RunningJobRegistry struct {
	mu   sync.Mutex
	jobs map[string]time.Time
}

// NewRunningJobRegistry creates an empty registry.
func NewRunningJobRegistry() *RunningJobRegistry {
	return &RunningJobRegistry{jobs: make(map[string]time.Time)}
}

// Add registers id and reports whether it was not already present.
func (r *RunningJobRegistry) Add(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; ok {
		return false
	}
	r.jobs[id] = time.Now()
	return true
}

// Remove unregisters id.
func (r *RunningJobRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// Contains reports whether id is running.
func (r *RunningJobRegistry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.jobs[id]
	return ok
}

// Len returns the number of running jobs.
func (r *RunningJobRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// IDs returns the running job ids in sorted order.
func (r *RunningJobRegistry) IDs() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.jobs))
	for id := range r.jobs {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Since returns when id started running.
func (r *RunningJobRegistry) Since(id string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.jobs[id]
	return t, ok
}

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

package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a job event.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventStarted   EventType = "started"
	EventSucceeded EventType = "succeeded"
	EventFailed    EventType = "failed"
)

// Event is a single job notification.
type Event struct {
	ID        string         `json:"id"`
	JobID     string         `json:"job_id"`
	Type      EventType      `json:"type"`
	Progress  float64        `json:"progress"`
	Message   string         `json:"message,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent creates an event with a fresh id and timestamp.
func NewEvent(jobID string, eventType EventType, progress float64, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		JobID:     jobID,
		Type:      eventType,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Notifier delivers job events. Delivery is best-effort; callers log and
// ignore errors.
type Notifier interface {
	Publish(ctx context.Context, jobID string, event Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Notifier.
func (Nop) Publish(context.Context, string, Event) error { return nil }

// LogNotifier writes events to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier logging at info level.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: slog.Default().With("component", "notifier")}
}

// Publish implements Notifier.
func (n *LogNotifier) Publish(ctx context.Context, jobID string, event Event) error {
	n.logger.InfoContext(ctx, "job event",
		"job_id", jobID,
		"type", event.Type,
		"progress", event.Progress,
		"message", event.Message)
	return nil
}

// Multi publishes to several notifiers and joins their errors.
type Multi []Notifier

// Publish implements Notifier.
func (m Multi) Publish(ctx context.Context, jobID string, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Publish(ctx, jobID, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broadcaster fans events out to in-process subscribers. A subscriber whose
// buffer is full misses the event.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[uint64]*subscription
	next    uint64
	dropped atomic.Uint64
	logger  *slog.Logger
}

type subscription struct {
	jobID string
	ch    chan Event
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs:   make(map[uint64]*subscription),
		logger: slog.Default().With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber for jobID, or for every job when jobID
// is empty. The returned cancel function closes the channel.
func (b *Broadcaster) Subscribe(jobID string, buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	b.mu.Lock()
	id := b.next
	b.next++
	sub := &subscription{jobID: jobID, ch: make(chan Event, buffer)}
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Publish implements Notifier. It never blocks.
func (b *Broadcaster) Publish(ctx context.Context, jobID string, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.jobID != "" && sub.jobID != jobID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
			b.logger.Debug("subscriber buffer full, dropping event", "job_id", jobID, "type", event.Type)
		}
	}
	return nil
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns the number of events lost to full subscriber buffers.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

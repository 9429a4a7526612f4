package strategy

import (
	"context"
	"sync"
	"testing"

	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReporter_ClampsAndPublishes(t *testing.T) {
	var mu sync.Mutex
	var stored []float64
	jobs := &fakeJobStore{
		GetJobFunc: func(ctx context.Context, id string) (*core.Job, error) { return nil, nil },
		UpdateProgressFunc: func(ctx context.Context, id string, percent float64, message string) error {
			mu.Lock()
			defer mu.Unlock()
			stored = append(stored, percent)
			return nil
		},
	}
	b := notify.NewBroadcaster()
	events, cancel := b.Subscribe("job-1", 8)
	defer cancel()

	p := NewProgressReporter(jobs, b, "job-1")
	ctx := context.Background()
	p.Update(ctx, -5, "too low")
	p.Update(ctx, 150, "too high")
	p.Step(ctx, ProgressFastAnalyze, ProgressFastFinalize, 1, 2, "video 2 of 2")

	assert.Equal(t, []float64{0, 100, 50}, stored)
	assert.Equal(t, float64(50), p.Current())

	require.Len(t, events, 3)
	first := <-events
	assert.Equal(t, notify.EventProgress, first.Type)
	assert.Equal(t, "job-1", first.JobID)
	assert.Equal(t, float64(0), first.Progress)
	assert.Equal(t, "too low", first.Message)
	assert.NotEmpty(t, first.ID)
}

func TestProgressReporter_StepWithoutItems(t *testing.T) {
	jobs := &fakeJobStore{}
	p := NewProgressReporter(jobs, nil, "job-1")
	p.Step(context.Background(), 25, 75, 0, 0, "nothing to do")
	assert.Equal(t, float64(25), p.Current())
	assert.Equal(t, 1, jobs.CallCount())
}

package badger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJobs(t *testing.T) storage.JobRepository {
	t.Helper()
	jobs, backend, err := NewMemoryJobRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		jobs.Close()
		backend.Close()
	})
	return jobs
}

func testJob(id string) *core.Job {
	return &core.Job{
		ID: id,
		Sources: []core.ContentSource{
			{ContentType: core.ContentTypeWebPage, Reference: "https://example.com"},
		},
	}
}

func TestJobRepository_CreateAndGet(t *testing.T) {
	jobs := newTestJobs(t)
	ctx := context.Background()

	created, err := jobs.CreateJob(ctx, testJob("job-1"))
	require.NoError(t, err)
	assert.Equal(t, core.JobPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Sources, got.Sources)

	_, err = jobs.CreateJob(ctx, testJob("job-1"))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = jobs.GetJob(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = jobs.CreateJob(ctx, &core.Job{})
	assert.Equal(t, core.KindValidation, core.KindOf(err))
}

func TestJobRepository_UpdateProgress(t *testing.T) {
	jobs := newTestJobs(t)
	ctx := context.Background()
	_, err := jobs.CreateJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	require.NoError(t, jobs.UpdateProgress(ctx, "job-1", 40, "Generating summary"))
	job, err := jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobProcessing, job.Status)
	assert.Equal(t, 40.0, job.Progress)
	assert.Equal(t, "Generating summary", job.Message)

	require.NoError(t, jobs.UpdateProgress(ctx, "job-1", 250, "overshoot"))
	job, err = jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, job.Progress)

	require.ErrorIs(t, jobs.UpdateProgress(ctx, "missing", 10, ""), storage.ErrNotFound)
}

func TestJobRepository_TerminalWrittenOnce(t *testing.T) {
	jobs := newTestJobs(t)
	ctx := context.Background()
	_, err := jobs.CreateJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	result := &core.ProcessingResult{Status: core.StatusSuccess, Title: "Lecture", ContentText: "text", StrategyUsed: "general_pipeline"}
	require.NoError(t, jobs.MarkSucceeded(ctx, "job-1", result))

	err = jobs.MarkFailed(ctx, "job-1", "late failure", core.KindStrategy, nil)
	require.ErrorIs(t, err, storage.ErrJobTerminal)
	err = jobs.MarkSucceeded(ctx, "job-1", result)
	require.ErrorIs(t, err, storage.ErrJobTerminal)
	err = jobs.UpdateProgress(ctx, "job-1", 50, "late progress")
	require.ErrorIs(t, err, storage.ErrJobTerminal)

	job, err := jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobSucceeded, job.Status)
	assert.Equal(t, 100.0, job.Progress)
	assert.Equal(t, "Lecture", job.Title)
	assert.Empty(t, job.Error)
	require.NotNil(t, job.Result)
	assert.Equal(t, "general_pipeline", job.Result.StrategyUsed)
}

func TestJobRepository_MarkFailed(t *testing.T) {
	jobs := newTestJobs(t)
	ctx := context.Background()
	_, err := jobs.CreateJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	failed := &core.ProcessingResult{Status: core.StatusFailed, Error: "no content could be extracted", StrategyUsed: "general_pipeline"}
	require.NoError(t, jobs.MarkFailed(ctx, "job-1", failed.Error, core.KindParsing, failed))

	job, err := jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, job.Status)
	assert.Equal(t, "no content could be extracted", job.Error)
	assert.Equal(t, core.KindParsing, job.ErrorKind)
}

func TestJobRepository_ConcurrentTerminalWrites(t *testing.T) {
	jobs := newTestJobs(t)
	ctx := context.Background()
	_, err := jobs.CreateJob(ctx, testJob("job-1"))
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if jobs.MarkFailed(ctx, "job-1", "boom", core.KindStrategy, nil) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestJobRepository_ListJobs(t *testing.T) {
	jobs := newTestJobs(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		job := testJob(fmt.Sprintf("job-%d", i))
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := jobs.CreateJob(ctx, job)
		require.NoError(t, err)
	}

	listed, err := jobs.ListJobs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "job-4", listed[0].ID)
	assert.Equal(t, "job-3", listed[1].ID)
	assert.Equal(t, "job-2", listed[2].ID)

	all, err := jobs.ListJobs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestJobCreatedKey(t *testing.T) {
	key := makeJobCreatedKey(time.Now(), "abc-123")
	assert.Equal(t, "abc-123", jobIDFromCreatedKey(key))
	assert.Equal(t, "", jobIDFromCreatedKey([]byte("short")))
}

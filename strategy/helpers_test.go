package strategy

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/ai/mock"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/storage"
	"github.com/parkho-ai/contentengine/storage/badger"
	"github.com/stretchr/testify/require"
)

var jobSeq atomic.Int64

func newJobStore(t *testing.T) storage.JobRepository {
	t.Helper()
	jobs, backend, err := badger.NewMemoryJobRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return jobs
}

func createJob(t *testing.T, jobs storage.JobRepository, opts core.ProcessingOptions, sources ...core.ContentSource) string {
	t.Helper()
	id := fmt.Sprintf("job-%d", jobSeq.Add(1))
	_, err := jobs.CreateJob(context.Background(), &core.Job{ID: id, Sources: sources, Options: opts})
	require.NoError(t, err)
	return id
}

func textChain(t *testing.T, generators ...*mock.MockTextGenerator) *ai.TextChain {
	t.Helper()
	providers := make([]ai.TextGenerator, len(generators))
	for i, g := range generators {
		providers[i] = g
	}
	chain, err := ai.NewChain(ai.CapabilityText, nil, providers)
	require.NoError(t, err)
	return chain
}

// fakeJobStore is a hand-written JobStore double.
type fakeJobStore struct {
	GetJobFunc         func(ctx context.Context, id string) (*core.Job, error)
	UpdateProgressFunc func(ctx context.Context, id string, percent float64, message string) error
	updates            atomic.Int32
}

func (f *fakeJobStore) GetJob(ctx context.Context, id string) (*core.Job, error) {
	return f.GetJobFunc(ctx, id)
}

func (f *fakeJobStore) UpdateProgress(ctx context.Context, id string, percent float64, message string) error {
	f.updates.Add(1)
	if f.UpdateProgressFunc != nil {
		return f.UpdateProgressFunc(ctx, id, percent, message)
	}
	return nil
}

func (f *fakeJobStore) CallCount() int {
	return int(f.updates.Load())
}

func video(ref string) core.ContentSource {
	return core.ContentSource{ContentType: core.ContentTypeVideo, Reference: ref}
}

func pdf(ref string) core.ContentSource {
	return core.ContentSource{ContentType: core.ContentTypePDF, Reference: ref}
}

func webPage(ref string) core.ContentSource {
	return core.ContentSource{ContentType: core.ContentTypeWebPage, Reference: ref}
}

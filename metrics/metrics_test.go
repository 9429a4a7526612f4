package metrics

import (
	"testing"
	"time"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveProviderFailure(ai.CapabilityText, ai.ProviderGoogle, ai.FailureRateLimit)
	m.ObserveProviderFailure(ai.CapabilityText, ai.ProviderGoogle, ai.FailureRateLimit)
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)
	m.ObserveStrategy("fast_video", false)
	m.ObserveFallback("fast_video", "general_pipeline")
	m.ObserveParse("pdf", true)
	m.ObserveRejected("duplicate")
	m.ObserveJob("general_pipeline", "success", 3*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderFailures.WithLabelValues("text-generation", "google", "rate_limit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyExecutions.WithLabelValues("fast_video", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyFallbacks.WithLabelValues("fast_video", "general_pipeline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseResults.WithLabelValues("pdf", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsRejected.WithLabelValues("duplicate")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.JobDuration))
}

func TestMetrics_RunningGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())

	done1 := m.JobStarted()
	done2 := m.JobStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobsRunning))

	done1()
	done2()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.JobsRunning))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveProviderFailure(ai.CapabilityText, ai.ProviderGoogle, ai.FailureUnknown)
		m.ObserveCacheLookup(true)
		m.ObserveStrategy("x", true)
		m.ObserveFallback("a", "b")
		m.ObserveParse("pdf", false)
		m.ObserveRejected("busy")
		m.ObserveJob("x", "failed", time.Second)
		m.JobStarted()()
	})
}

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

// Package metrics exposes Prometheus instrumentation for the engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "contentengine"

// Metrics holds the engine's collectors.
type Metrics struct {
	StrategyExecutions *prometheus.CounterVec
	StrategyFallbacks  *prometheus.CounterVec
	JobDuration        *prometheus.HistogramVec
	JobsRunning        prometheus.Gauge
	JobsRejected       *prometheus.CounterVec
	ProviderFailures   *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec
	ParseResults       *prometheus.CounterVec
}

// New creates and registers all collectors on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		StrategyExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "strategy",
			Name:      "executions_total",
			Help:      "Strategy executions by outcome",
		}, []string{"strategy", "outcome"}),

		StrategyFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "strategy",
			Name:      "fallbacks_total",
			Help:      "Fallbacks from a failed primary strategy",
		}, []string{"from", "to"}),

		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "End-to-end job duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 14),
		}, []string{"strategy", "status"}),

		JobsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "jobs",
			Name:      "running",
			Help:      "Jobs currently executing",
		}),

		JobsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "jobs",
			Name:      "rejected_total",
			Help:      "Jobs rejected before execution",
		}, []string{"reason"}),

		ProviderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "provider",
			Name:      "failures_total",
			Help:      "Provider call failures by class",
		}, []string{"capability", "provider", "class"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Artifact cache lookups by result",
		}, []string{"result"}),

		ParseResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "parsing",
			Name:      "results_total",
			Help:      "Per-source parse outcomes",
		}, []string{"content_type", "outcome"}),
	}
}

// ObserveProviderFailure has the signature of ai.FailureObserver.
func (m *Metrics) ObserveProviderFailure(capability ai.Capability, provider ai.ProviderName, class ai.FailureClass) {
	if m == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(string(capability), string(provider), string(class)).Inc()
}

// ObserveCacheLookup has the signature of cache.Observer.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveParse records one source's parse outcome.
func (m *Metrics) ObserveParse(contentType string, ok bool) {
	if m == nil {
		return
	}
	m.ParseResults.WithLabelValues(contentType, outcome(ok)).Inc()
}

// ObserveStrategy records one strategy execution.
func (m *Metrics) ObserveStrategy(strategy string, ok bool) {
	if m == nil {
		return
	}
	m.StrategyExecutions.WithLabelValues(strategy, outcome(ok)).Inc()
}

// ObserveFallback records a fallback from one strategy to another.
func (m *Metrics) ObserveFallback(from, to string) {
	if m == nil {
		return
	}
	m.StrategyFallbacks.WithLabelValues(from, to).Inc()
}

// ObserveJob records a finished job.
func (m *Metrics) ObserveJob(strategy, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(strategy, status).Observe(elapsed.Seconds())
}

// ObserveRejected records a job rejected before execution.
func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.JobsRejected.WithLabelValues(reason).Inc()
}

// JobStarted increments the running gauge and returns a func that
// decrements it.
func (m *Metrics) JobStarted() func() {
	if m == nil {
		return func() {}
	}
	m.JobsRunning.Inc()
	return m.JobsRunning.Dec
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

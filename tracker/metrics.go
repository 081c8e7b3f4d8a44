// Copyright 2026 Blink Labs Software
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

package tracker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "substrate"

// Metrics exposes tracker activity as Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	submitted prometheus.Counter
	outcomes  *prometheus.CounterVec
	failures  prometheus.Counter
	inFlight  prometheus.Gauge
	finality  prometheus.Histogram
}

// NewMetrics creates the tracker collectors and registers them with reg, if
// not nil
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "tx",
			Name:      "submitted_total",
			Help:      "Transactions handed to the transport",
		}),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "tx",
				Name:      "outcomes_total",
				Help:      "Terminal transaction outcomes",
			},
			[]string{"outcome"},
		),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "tx",
			Name:      "tracking_failures_total",
			Help:      "Transactions whose tracking ended without an outcome",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "tx",
			Name:      "in_flight",
			Help:      "Transactions not yet in a terminal state",
		}),
		finality: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "tx",
			Name:      "finality_duration_seconds",
			Help:      "Time from submission to finalization",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~8.5m
		}),
	}
	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.submitted,
		m.outcomes,
		m.failures,
		m.inFlight,
		m.finality,
	}
}

// RecordSubmit counts a new in-flight transaction
func (m *Metrics) RecordSubmit() {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.inFlight.Inc()
}

// RecordOutcome counts a terminal outcome
func (m *Metrics) RecordOutcome(kind OutcomeKind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.outcomes.WithLabelValues(kind.String()).Inc()
	if kind == OutcomeSuccess || kind == OutcomeDispatchFailed {
		m.finality.Observe(elapsed.Seconds())
	}
}

// RecordFailure counts a transaction whose tracking failed
func (m *Metrics) RecordFailure() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.failures.Inc()
}

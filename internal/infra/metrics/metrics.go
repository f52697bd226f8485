// Package metrics exposes Prometheus instruments for price updates and push delivery.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "qimat"

// Push delivery outcomes.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomePruned  = "pruned"
)

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

// PushMetrics records Web Push fan-out results.
type PushMetrics struct {
	deliveries *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewPushMetrics registers the push metrics on the provided registerer.
func NewPushMetrics(reg prometheus.Registerer) *PushMetrics {
	if reg == nil {
		return &PushMetrics{}
	}

	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_deliveries_total",
		Help:      "Web Push deliveries by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "push_dispatch_duration_seconds",
		Help:      "Duration of a price change fan-out in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(deliveries, duration)

	return &PushMetrics{
		deliveries: deliveries,
		duration:   duration,
	}
}

// AddDeliveries adds n deliveries with the given outcome.
func (m *PushMetrics) AddDeliveries(outcome string, n int) {
	if m == nil || m.deliveries == nil || n <= 0 {
		return
	}
	m.deliveries.WithLabelValues(outcome).Add(float64(n))
}

// ObserveDispatch records how long one fan-out took.
func (m *PushMetrics) ObserveDispatch(d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

// PriceMetrics records bulk price update results.
type PriceMetrics struct {
	applied  prometheus.Counter
	changed  prometheus.Counter
	rejected *prometheus.CounterVec
}

// NewPriceMetrics registers the price metrics on the provided registerer.
func NewPriceMetrics(reg prometheus.Registerer) *PriceMetrics {
	if reg == nil {
		return &PriceMetrics{}
	}

	applied := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_updates_applied_total",
		Help:      "Price records written by bulk updates.",
	})
	changed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_changes_total",
		Help:      "Price updates that changed the previous price.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_updates_rejected_total",
		Help:      "Rejected price update entries by reason.",
	}, []string{"reason"})
	reg.MustRegister(applied, changed, rejected)

	return &PriceMetrics{
		applied:  applied,
		changed:  changed,
		rejected: rejected,
	}
}

// AddApplied adds n written price records.
func (m *PriceMetrics) AddApplied(n int) {
	if m == nil || m.applied == nil || n <= 0 {
		return
	}
	m.applied.Add(float64(n))
}

// AddChanged adds n changed prices.
func (m *PriceMetrics) AddChanged(n int) {
	if m == nil || m.changed == nil || n <= 0 {
		return
	}
	m.changed.Add(float64(n))
}

// IncRejected counts one rejected entry.
func (m *PriceMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.rejected.WithLabelValues(reason).Inc()
}

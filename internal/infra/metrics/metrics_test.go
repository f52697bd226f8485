package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPushMetrics(reg)

	m.AddDeliveries(OutcomeSent, 3)
	m.AddDeliveries(OutcomePruned, 1)
	m.AddDeliveries(OutcomeSkipped, 0)
	m.ObserveDispatch(120 * time.Millisecond)

	assert.InDelta(t, 3, testutil.ToFloat64(m.deliveries.WithLabelValues(OutcomeSent)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.deliveries.WithLabelValues(OutcomePruned)), 0)

	count, err := testutil.GatherAndCount(reg, "qimat_push_dispatch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPriceMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPriceMetrics(reg)

	m.AddApplied(2)
	m.AddChanged(1)
	m.IncRejected("ValidationError")
	m.IncRejected("")

	assert.InDelta(t, 2, testutil.ToFloat64(m.applied), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.changed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rejected.WithLabelValues("ValidationError")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rejected.WithLabelValues("unknown")), 0)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var push *PushMetrics
	var price *PriceMetrics

	assert.NotPanics(t, func() {
		push.AddDeliveries(OutcomeSent, 1)
		push.ObserveDispatch(time.Second)
		price.AddApplied(1)
		price.AddChanged(1)
		price.IncRejected("x")
		NewPushMetrics(nil).AddDeliveries(OutcomeSent, 1)
		NewPriceMetrics(nil).IncRejected("x")
	})
}

func TestNewRegistry(t *testing.T) {
	families, err := NewRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/metrics"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.IncMovement("SALE")
	m.IncMovement("SALE")
	m.IncRejection("busy")
	m.IncTransition("RECEIVED")
	m.IncBusyRetry()
	m.IncAuditDropped()
	m.IncAuditWriteFailure()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Movements.WithLabelValues("SALE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Rejections.WithLabelValues("busy")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestMetrics_ReceptorNil(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.IncMovement("SALE")
		m.IncRejection("busy")
		m.IncTransition("RECEIVED")
		m.IncBusyRetry()
		m.IncAuditDropped()
		m.IncAuditWriteFailure()
	})
}

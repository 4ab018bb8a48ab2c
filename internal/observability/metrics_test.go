package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordPackageCreated("client_to_client")
	m.RecordPackageCreated("client_to_client")
	m.RecordStatusChange("Delivered")
	m.RecordReschedule()
	m.RecordCodeCollision()
	m.RecordRequest("/api/packages/:id", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/packages", "POST", "VALIDATION_FAILED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.packagesCreated.WithLabelValues("client_to_client")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("Delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reschedules))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.codeCollisions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/packages/:id", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/api/packages", "POST", "VALIDATION_FAILED")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordPackageCreated("x")
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordCodeCollision()
	})
}

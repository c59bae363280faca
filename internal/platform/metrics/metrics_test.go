package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncRecordWritten("types", "create")
	m.IncRecordWritten("types", "create")
	m.IncTokenIssued()
	m.IncCacheLookup(true)
	m.IncCacheLookup(false)
	m.ObserveRequest("GET", "/types/{id}", 200, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsWritten.WithLabelValues("types", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncRecordWritten("types", "create")
		m.IncTokenIssued()
		m.IncLogEntry("types", "create")
		m.IncStreamFailure()
		m.IncCacheLookup(true)
	})
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared across modules.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RecordsWritten  *prometheus.CounterVec
	TokensIssued    prometheus.Counter
	LogEntries      *prometheus.CounterVec
	StreamFailures  prometheus.Counter
	CacheLookups    *prometheus.CounterVec
}

// New registers all collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trouwen_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
		RecordsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trouwen_records_written_total",
			Help: "Records created, replaced or deleted per resource",
		}, []string{"resource", "action"}),
		TokensIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "trouwen_invitation_tokens_issued_total",
			Help: "Invitation tokens issued for new officiants",
		}),
		LogEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trouwen_log_entries_total",
			Help: "Audit log entries recorded per object class",
		}, []string{"object_class", "action"}),
		StreamFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "trouwen_log_stream_failures_total",
			Help: "Audit log entries that could not be streamed",
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trouwen_cache_lookups_total",
			Help: "Catalog cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// IncRecordWritten counts a create/replace/delete on a resource.
func (m *Metrics) IncRecordWritten(resource, action string) {
	if m == nil {
		return
	}
	m.RecordsWritten.WithLabelValues(resource, action).Inc()
}

func (m *Metrics) IncTokenIssued() {
	if m == nil {
		return
	}
	m.TokensIssued.Inc()
}

func (m *Metrics) IncLogEntry(objectClass, action string) {
	if m == nil {
		return
	}
	m.LogEntries.WithLabelValues(objectClass, action).Inc()
}

func (m *Metrics) IncStreamFailure() {
	if m == nil {
		return
	}
	m.StreamFailures.Inc()
}

// IncCacheLookup records a cache hit or miss.
func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

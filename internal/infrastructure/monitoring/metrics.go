package monitoring

import (
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/codes"
)

var _ stream.Observer = (*Metrics)(nil)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Stream metrics
	StreamsStarted    prometheus.Counter
	StreamsActive     prometheus.Gauge
	StreamsFinished   *prometheus.CounterVec
	Chunks            prometheus.Counter
	FirstChunkLatency prometheus.Histogram
	TelemetryFailures *prometheus.CounterVec

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	StreamsStarted    int64 `json:"streams_started"`
	StreamsFinished   int64 `json:"streams_finished"`
	StreamsFailed     int64 `json:"streams_failed"`
	Chunks            int64 `json:"chunks"`
	TelemetryFailures int64 `json:"telemetry_failures"`
}

// NewMetrics registers the metrics on reg under namespace
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Stream metrics
		StreamsStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_started_total",
				Help:      "Total number of instrumented streams",
			},
		),
		StreamsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "streams_active",
				Help:      "Number of streams whose span is not finalized yet",
			},
		),
		StreamsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_finished_total",
				Help:      "Total number of finalized stream spans by status",
			},
			[]string{"status"},
		),
		Chunks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_chunks_total",
				Help:      "Total number of chunks forwarded to callers",
			},
		),
		FirstChunkLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stream_first_chunk_seconds",
				Help:      "Time from stream creation to its first chunk",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		TelemetryFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_telemetry_failures_total",
				Help:      "Best-effort telemetry steps that failed and were skipped",
			},
			[]string{"stage"},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// StreamStarted records a new instrumented stream
func (m *Metrics) StreamStarted() {
	m.StreamsStarted.Inc()
	m.StreamsActive.Inc()

	m.mu.Lock()
	m.snapshot.StreamsStarted++
	m.mu.Unlock()
}

// ChunkReceived records the n-th chunk of a stream
func (m *Metrics) ChunkReceived(n int, elapsed time.Duration) {
	m.Chunks.Inc()
	if n == 1 {
		m.FirstChunkLatency.Observe(elapsed.Seconds())
	}

	m.mu.Lock()
	m.snapshot.Chunks++
	m.mu.Unlock()
}

// StreamFinished records a finalized span
func (m *Metrics) StreamFinished(status stream.Status) {
	m.StreamsFinished.WithLabelValues(strings.ToLower(status.Code.String())).Inc()
	m.StreamsActive.Dec()

	m.mu.Lock()
	m.snapshot.StreamsFinished++
	if status.Code == codes.Error {
		m.snapshot.StreamsFailed++
	}
	m.mu.Unlock()
}

// TelemetryFailure records a skipped best-effort step
func (m *Metrics) TelemetryFailure(stage string) {
	m.TelemetryFailures.WithLabelValues(stage).Inc()

	m.mu.Lock()
	m.snapshot.TelemetryFailures++
	m.mu.Unlock()
}

// Snapshot returns the current values
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

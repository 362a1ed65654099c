package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Store operation metrics
	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec
	columnsTotal           prometheus.Gauge
	rowsTotal              prometheus.Gauge

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfiledb_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfiledb_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cfiledb_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		storeOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfiledb_store_operations_total",
				Help: "Total number of column store operations",
			},
			[]string{"operation", "status"},
		),

		storeOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfiledb_store_operation_duration_seconds",
				Help:    "Column store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		columnsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cfiledb_columns_total",
				Help: "Number of columns in the store",
			},
		),

		rowsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cfiledb_rows_total",
				Help: "Total number of rows across all columns",
			},
		),

		healthChecksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfiledb_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStoreOperation records a column store operation
func (m *Metrics) RecordStoreOperation(operation string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.storeOperationsTotal.WithLabelValues(operation, status).Inc()
	m.storeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateStoreStats updates store-level gauges
func (m *Metrics) UpdateStoreStats(columns int, rows uint64) {
	m.columnsTotal.Set(float64(columns))
	m.rowsTotal.Set(float64(rows))
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.healthChecksTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Wrap the response writer to capture the status code.
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		duration := time.Since(start)
		m.RecordHTTPRequest(method, endpoint, rw.statusCode, duration)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

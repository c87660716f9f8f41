package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every collector exposed on /api/metrics
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Buckets from sub-millisecond slot reads to slow remote writes
	CustomAPIBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Store Metrics
	StoreOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_store_operation_duration_seconds",
			Help:    "Profile store slot operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"backend", "operation", "status"},
	)

	StoreOperationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_store_operation_total",
			Help: "Total number of profile store slot operations",
		},
		[]string{"backend", "operation", "status"},
	)

	StoreCorruptLoads = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_store_corrupt_loads_total",
			Help: "Stored values rejected by structural validation and treated as absent",
		},
	)

	// Business Metrics
	ProfileSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_submissions_total",
			Help: "Total number of profile submissions",
		},
		[]string{"status"}, // success, invalid, error
	)

	ResumeUploads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_resume_uploads_total",
			Help: "Total number of resume uploads",
		},
		[]string{"status"},
	)

	ResumeUploadBytes = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profile_resume_upload_bytes",
			Help:    "Size of uploaded resumes before encoding",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	ListEdits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_list_edits_total",
			Help: "Total number of list edits on the profile form",
		},
		[]string{"list", "operation"},
	)

	EventDeliveries = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_event_deliveries_total",
			Help: "Total number of profile event deliveries",
		},
		[]string{"channel", "status"},
	)

	// Infrastructure Metrics
	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

// ObserveStore records one slot operation outcome
func ObserveStore(backend, operation, status string, duration float64) {
	StoreOperationDuration.WithLabelValues(backend, operation, status).Observe(duration)
	StoreOperationTotal.WithLabelValues(backend, operation, status).Inc()
}

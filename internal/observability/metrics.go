package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages
const (
	StageSettings    = "settings"
	StageGeneration  = "generation"
	StageSynthesis   = "synthesis"
	StageAcquisition = "acquisition"
)

var (
	// Request metrics
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hook_service_active_requests",
		Help: "Number of hook requests in flight",
	})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hook_service_requests_total",
		Help: "Total number of hook requests by outcome",
	}, []string{"outcome"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hook_service_request_duration_seconds",
		Help:    "End-to-end duration of hook requests in seconds",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	// Stage metrics
	stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hook_service_stage_latency_seconds",
		Help:    "Latency of each pipeline stage in seconds",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"stage", "status"})

	acquisitionAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hook_service_acquisition_attempts",
		Help:    "Number of polls needed to fetch synthesized audio",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hook_service_errors_total",
		Help: "Total number of failed requests by error kind",
	}, []string{"kind"})

	// Payload metrics
	payloadBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hook_service_payload_bytes_total",
		Help: "Total payload bytes processed",
	}, []string{"direction"}) // direction: "video_in" or "audio_out"
)

// Metrics tracks metrics for a single request
type Metrics struct {
	startTime   time.Time
	stageStarts map[string]time.Time
	mu          sync.Mutex
}

// NewRequestMetrics creates a new metrics tracker for a request
func NewRequestMetrics() *Metrics {
	return &Metrics{
		startTime:   time.Now(),
		stageStarts: make(map[string]time.Time),
	}
}

// RecordRequestStart records the start of a request
func (m *Metrics) RecordRequestStart() {
	activeRequests.Inc()
}

// RecordRequestEnd records the end of a request
func (m *Metrics) RecordRequestEnd(success bool) {
	activeRequests.Dec()
	requestDuration.Observe(time.Since(m.startTime).Seconds())

	outcome := "success"
	if !success {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(outcome).Inc()
}

// RecordStageStart records the start of a pipeline stage
func (m *Metrics) RecordStageStart(stage string) {
	m.mu.Lock()
	m.stageStarts[stage] = time.Now()
	m.mu.Unlock()
}

// RecordStageEnd records the end of a pipeline stage
func (m *Metrics) RecordStageEnd(stage string, success bool) {
	m.mu.Lock()
	start, ok := m.stageStarts[stage]
	delete(m.stageStarts, stage)
	m.mu.Unlock()

	status := "success"
	if !success {
		status = "error"
	}
	if ok {
		stageLatency.WithLabelValues(stage, status).Observe(time.Since(start).Seconds())
	}
}

// RecordAcquisitionAttempts records how many polls the acquisition loop made
func (m *Metrics) RecordAcquisitionAttempts(attempts int) {
	acquisitionAttempts.Observe(float64(attempts))
}

// RecordError records a failed request by error kind
func (m *Metrics) RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPayloadBytes records payload bytes processed
func (m *Metrics) RecordPayloadBytes(direction string, bytes int) {
	payloadBytes.WithLabelValues(direction).Add(float64(bytes))
}

package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acadops/course-scheduler-api/internal/dto"
	"github.com/acadops/course-scheduler-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the scheduling pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	generationRuns     prometheus.Counter
	generationDuration prometheus.Histogram
	entriesGenerated   prometheus.Counter
	forcedEntries      prometheus.Counter
	offeringsSkipped   *prometheus.CounterVec
	conflictsDetected  *prometheus.CounterVec
	entriesSaved       prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	generationRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_generation_runs_total",
		Help: "Total schedule generation runs",
	})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Duration of schedule generation runs",
		Buckets: prometheus.DefBuckets,
	})

	entriesGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_entries_generated_total",
		Help: "Total schedule entries produced by generation runs",
	})

	forcedEntries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_forced_entries_total",
		Help: "Total entries placed without a conflict-free slot",
	})

	offeringsSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_offerings_skipped_total",
		Help: "Total offerings skipped during generation, by reason",
	}, []string{"reason"})

	conflictsDetected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_conflicts_detected_total",
		Help: "Total conflicts reported by detection runs, by type",
	}, []string{"type"})

	entriesSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_entries_saved_total",
		Help: "Total schedule entries persisted",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationRuns, generationDuration,
		entriesGenerated, forcedEntries, offeringsSkipped, conflictsDetected, entriesSaved, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationRuns:     generationRuns,
		generationDuration: generationDuration,
		entriesGenerated:   entriesGenerated,
		forcedEntries:      forcedEntries,
		offeringsSkipped:   offeringsSkipped,
		conflictsDetected:  conflictsDetected,
		entriesSaved:       entriesSaved,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGeneration records the outcome of one generation run.
func (m *MetricsService) ObserveGeneration(summary dto.GenerationSummary, skipped []models.SkippedOffering) {
	if m == nil {
		return
	}
	m.generationRuns.Inc()
	m.generationDuration.Observe(float64(summary.DurationMillis) / 1000)
	m.entriesGenerated.Add(float64(summary.EntriesGenerated))
	m.forcedEntries.Add(float64(summary.ForcedEntries))
	for _, skip := range skipped {
		m.offeringsSkipped.WithLabelValues(string(skip.Reason)).Inc()
	}
}

// ObserveConflicts records the outcome of one detection run.
func (m *MetricsService) ObserveConflicts(conflicts []models.Conflict) {
	if m == nil {
		return
	}
	for _, c := range conflicts {
		m.conflictsDetected.WithLabelValues(string(c.Type)).Inc()
	}
}

// ObserveSave records how many entries a save run persisted.
func (m *MetricsService) ObserveSave(saved int) {
	if m == nil {
		return
	}
	m.entriesSaved.Add(float64(saved))
}

package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	generatorRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_generator_requests_total",
		Help: "Generator outcomes by operation and source (cache/fallback/generated/exhausted)",
	}, []string{"op", "source"})

	providerAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_provider_attempts_total",
		Help: "Calls made to the text generation provider by operation and result",
	}, []string{"op", "result"})

	providerLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "interview_provider_latency_ms",
		Help:    "Latency of text generation calls in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 15000},
	}, []string{"op"})

	sessionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_session_events_total",
		Help: "Session lifecycle events (started/answered/completed/forced_complete)",
	}, []string{"event"})

	storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_store_errors_total",
		Help: "Session store failures by backend and operation",
	}, []string{"backend", "op"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(generatorRequests, providerAttempts, providerLatency, sessionEvents, storeErrors)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	ensureRegistered()
	return promhttp.Handler()
}

// IncGenerator records where a generator result came from.
func IncGenerator(op, source string) {
	ensureRegistered()
	generatorRequests.WithLabelValues(op, source).Inc()
}

// ObserveProvider records one provider call.
func ObserveProvider(op string, start time.Time, err error) {
	ensureRegistered()
	result := "ok"
	if err != nil {
		result = "error"
	}
	providerAttempts.WithLabelValues(op, result).Inc()
	providerLatency.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
}

// IncSession records a session lifecycle event.
func IncSession(event string) {
	ensureRegistered()
	sessionEvents.WithLabelValues(event).Inc()
}

// IncStoreError records a failed store operation.
func IncStoreError(backend, op string) {
	ensureRegistered()
	storeErrors.WithLabelValues(backend, op).Inc()
}

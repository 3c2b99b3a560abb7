// Package metrics exposes Prometheus instrumentation for pipeline
// execution and the HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pipelineStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webforge",
		Subsystem: "pipeline",
		Name:      "started_total",
		Help:      "Pipeline submissions picked up by a worker.",
	}, []string{"kind"})

	pipelineCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webforge",
		Subsystem: "pipeline",
		Name:      "completed_total",
		Help:      "Pipelines that reached the completed state.",
	}, []string{"kind"})

	pipelineFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webforge",
		Subsystem: "pipeline",
		Name:      "failed_total",
		Help:      "Pipelines that reached the failed state.",
	}, []string{"kind"})

	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "webforge",
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "End-to-end duration of completed pipelines.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"kind"})

	stepRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webforge",
		Subsystem: "step",
		Name:      "retries_total",
		Help:      "Step attempts beyond the first.",
	}, []string{"step"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webforge",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status class.",
	}, []string{"route", "status"})
)

// PipelineStarted records a worker picking up a submission.
func PipelineStarted(kind string) {
	pipelineStarted.WithLabelValues(kind).Inc()
}

// PipelineCompleted records a successful pipeline and its duration.
func PipelineCompleted(kind string, d time.Duration) {
	pipelineCompleted.WithLabelValues(kind).Inc()
	pipelineDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// PipelineFailed records a failed pipeline.
func PipelineFailed(kind string) {
	pipelineFailed.WithLabelValues(kind).Inc()
}

// StepRetried records a retry of the named step.
func StepRetried(step string) {
	stepRetries.WithLabelValues(step).Inc()
}

// HTTPRequest records one served request.
func HTTPRequest(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

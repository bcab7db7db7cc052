package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "applicant_review"

var (
	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "upstream_requests_total",
		Help:      "Recruitment API calls by operation and outcome.",
	}, []string{"op", "outcome"})

	upstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "upstream_request_seconds",
		Help:      "Recruitment API call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	workerJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "worker_jobs_total",
		Help:      "Background jobs by kind and outcome.",
	}, []string{"kind", "outcome"})

	evaluationSaves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "evaluation_saves_total",
		Help:      "Evaluation saves by outcome. Failed saves keep the local override.",
	}, []string{"outcome"})

	staleEvaluations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "stale_evaluations_total",
		Help:      "Fetched evaluations dropped because the selection moved on.",
	})

	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "active_sessions",
		Help:      "Review sessions held in memory.",
	})
)

func init() {
	prometheus.MustRegister(
		upstreamRequests,
		upstreamLatency,
		workerJobs,
		evaluationSaves,
		staleEvaluations,
		activeSessions,
	)
}

// outcome labels an error for the counters above.
func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Allocation engine metrics.
var (
	CandidatesRanked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "allocation_candidates_ranked_total",
		Help: "Employees scored across all ranking requests",
	})

	OffersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "allocation_offers_created_total",
		Help: "Assignment offers written by allocations",
	})

	OfferResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocation_offer_responses_total",
			Help: "Offer responses by kind",
		},
		[]string{"response"},
	)

	StoreConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "allocation_store_conflicts_total",
		Help: "Optimistic-lock conflicts seen by the record store, including retried ones",
	})

	AuditFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocation_audit_failures_total",
			Help: "Audit sink writes that failed and were dropped",
		},
		[]string{"sink"},
	)
)

const (
	ResponseAccepted = "accepted"
	ResponseDeclined = "declined"
)

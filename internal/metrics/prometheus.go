// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the fan ledger.
var (
	// Counters.
	PointsEarnedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanledger_points_earned_total",
			Help: "Total points credited to fans",
		},
		[]string{"source"},
	)

	PointsRedeemedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanledger_points_redeemed_total",
			Help: "Total points debited by reward redemptions",
		},
	)

	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanledger_operations_total",
			Help: "Total ledger operations by outcome",
		},
		[]string{"operation", "status"},
	)

	TierChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanledger_tier_changes_total",
			Help: "Total tier transitions",
		},
		[]string{"from", "to"},
	)

	SocialConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanledger_social_connections_total",
			Help: "Total social profile connection toggles",
		},
		[]string{"platform", "action"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanledger_notifications_total",
			Help: "Total notification deliveries by outcome",
		},
		[]string{"status"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanledger_cache_requests_total",
			Help: "Total snapshot cache lookups",
		},
		[]string{"kind", "result"},
	)

	// Gauges.
	FansByTier = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fanledger_fans_by_tier",
			Help: "Current number of fans in each tier",
		},
		[]string{"tier"},
	)

	// Histograms.
	PointsTransactionAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanledger_transaction_amount_points",
			Help:    "Absolute size of points transactions",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10 to ~5k points
		},
		[]string{"source"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanledger_scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"job", "status"},
	)

	SchedulerLastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fanledger_scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
		[]string{"job"},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanledger_scheduler_job_duration_seconds",
			Help:    "Time taken to execute a scheduler job",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"job"},
	)
)

// Operation status labels.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// RecordPointsEarned records a credit of amount points.
func RecordPointsEarned(source string, amount int) {
	PointsEarnedTotal.WithLabelValues(source).Add(float64(amount))
	PointsTransactionAmount.WithLabelValues(source).Observe(float64(amount))
}

// RecordPointsRedeemed records a debit of amount points.
func RecordPointsRedeemed(amount int) {
	PointsRedeemedTotal.Add(float64(amount))
	PointsTransactionAmount.WithLabelValues("reward").Observe(float64(amount))
}

// RecordOperation records the outcome of a ledger operation.
func RecordOperation(operation, status string) {
	LedgerOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordTierChange records a tier transition.
func RecordTierChange(from, to string) {
	TierChangesTotal.WithLabelValues(from, to).Inc()
}

// RecordSocialConnection records a social connection toggle.
func RecordSocialConnection(platform, action string) {
	SocialConnectionsTotal.WithLabelValues(platform, action).Inc()
}

// RecordNotification records a notification delivery outcome.
func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequestsTotal.WithLabelValues(kind, result).Inc()
}

// SetFansByTier sets the number of fans in a tier.
func SetFansByTier(tier string, count int64) {
	FansByTier.WithLabelValues(tier).Set(float64(count))
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(job, status string) {
	SchedulerJobsRunTotal.WithLabelValues(job, status).Inc()
}

// SetSchedulerLastRun sets the timestamp of the last run of job.
func SetSchedulerLastRun(job string) {
	SchedulerLastRunTimestamp.WithLabelValues(job).SetToCurrentTime()
}

// ObserveSchedulerJobDuration observes the duration of a scheduler job.
func ObserveSchedulerJobDuration(job string, seconds float64) {
	SchedulerJobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

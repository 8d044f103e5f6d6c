package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BootstrapRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitimprove_bootstrap_runs_total",
			Help: "Total number of cache bootstrap runs",
		},
		[]string{"role", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitimprove_api_requests_total",
			Help: "Total number of requests to the schedule API",
		},
		[]string{"endpoint", "status"},
	)

	CacheRowsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitimprove_cache_rows_written_total",
			Help: "Total number of rows written to the local cache",
		},
		[]string{"table"},
	)

	CacheWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitimprove_cache_write_failures_total",
			Help: "Total number of local cache writes that were dropped",
		},
		[]string{"table"},
	)

	BookingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitimprove_bookings_total",
			Help: "Total number of successful enrollments",
		},
	)

	CancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitimprove_cancellations_total",
			Help: "Total number of successful enrollment cancellations",
		},
	)

	InvitationRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitimprove_invitation_replies_total",
			Help: "Total number of invitation replies",
		},
		[]string{"decision"},
	)
)

func RecordBootstrap(role, status string) {
	BootstrapRunsTotal.WithLabelValues(role, status).Inc()
}

func RecordAPIRequest(endpoint, status string) {
	APIRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

func RecordCacheWrite(table string) {
	CacheRowsWrittenTotal.WithLabelValues(table).Inc()
}

func RecordCacheWriteFailure(table string) {
	CacheWriteFailuresTotal.WithLabelValues(table).Inc()
}

func RecordBooking() {
	BookingsTotal.Inc()
}

func RecordCancellation() {
	CancellationsTotal.Inc()
}

func RecordInvitationReply(decision string) {
	InvitationRepliesTotal.WithLabelValues(decision).Inc()
}

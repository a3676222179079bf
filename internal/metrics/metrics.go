// Package metrics holds Prometheus instruments that are used across the
// forms service.  All collectors are registered with the global registry,
// so importing this package in main.go is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_submissions_accepted_total",
			Help: "Cumulative number of submissions that passed every gate and were persisted.",
		})

	SubmissionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_rejected_total",
			Help: "Cumulative number of submissions rejected before persistence, by gate.",
		},
		[]string{"reason"},
	)

	BotsTrapped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_bots_trapped_total",
			Help: "Cumulative number of honeypot hits answered with a disguised success.",
		})

	NotifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_notify_failures_total",
			Help: "Cumulative number of best-effort notification failures, by action.",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		SubmissionsAccepted,
		SubmissionsRejected,
		BotsTrapped,
		NotifyFailures,
	)
}

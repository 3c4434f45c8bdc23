// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixhub_job_transitions_total",
		Help: "Total number of job lifecycle transitions, by event and outcome.",
	}, []string{"event", "outcome"})

	OffersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fixhub_offers_submitted_total",
		Help: "Total number of offers submitted.",
	})

	OffersResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixhub_offers_resolved_total",
		Help: "Total number of offers resolved, by terminal status.",
	}, []string{"status"})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixhub_notifications_created_total",
		Help: "Total number of notifications created, by kind.",
	}, []string{"kind"})
)

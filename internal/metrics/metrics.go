// Package metrics exposes the process's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts generation attempts by content type and outcome.
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "copystudio_generations_total",
		Help: "Generation requests by content type and outcome.",
	}, []string{"type", "outcome"})

	// AuthEventsTotal counts identity provider transitions observed by the app.
	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "copystudio_auth_events_total",
		Help: "Identity provider auth events by kind.",
	}, []string{"event"})

	// PaymentVerifications counts verify-payment outcomes, including the
	// soft-accepted ones.
	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "copystudio_payment_verifications_total",
		Help: "Payment verification outcomes.",
	}, []string{"outcome"})
)

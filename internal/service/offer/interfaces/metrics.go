// internal/service/offer/interfaces/metrics.go
package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	offersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gpoffer_offers_created_total",
		Help: "Number of offers created in draft state.",
	})
	joinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpoffer_joins_total",
		Help: "Number of join requests, by result.",
	}, []string{"result"}) // joined / duplicate / rejected
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpoffer_transitions_total",
		Help: "Number of committed lifecycle transitions, by target status.",
	}, []string{"status"})
	sweepResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpoffer_sweep_resolved_total",
		Help: "Number of offers resolved by the expiry sweep, by outcome.",
	}, []string{"outcome"}) // fulfilled / expired / conflict
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTotalCheckoutSessions = "total_checkout_sessions"
	NameTotalProActivations   = "total_pro_activations"
)

// TotalCheckoutSessions counts Stripe Checkout sessions started from /buy.
var TotalCheckoutSessions = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalCheckoutSessions,
		Help:      "Total Stripe checkout sessions created",
		Namespace: Namespace,
	},
)

// TotalProActivations counts Pro unlocks from any source: checkout returns,
// webhooks and admin codes.
var TotalProActivations = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalProActivations,
		Help:      "Total Pro activations",
		Namespace: Namespace,
	},
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTotalCardRequests    = "total_card_requests"
	NameTotalCardErrors      = "total_card_errors"
	NameTotalQuotaRejections = "total_quota_rejections"
)

// TotalCardRequests counts card generations that passed the quota gate.
var TotalCardRequests = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalCardRequests,
		Help:      "Total card generation requests",
		Namespace: Namespace,
	},
)

// TotalCardErrors counts provider calls that failed outright.
var TotalCardErrors = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalCardErrors,
		Help:      "Total failed card generations",
		Namespace: Namespace,
	},
)

// TotalQuotaRejections counts requests bounced for an exhausted free quota.
var TotalQuotaRejections = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalQuotaRejections,
		Help:      "Total requests rejected by the daily free quota",
		Namespace: Namespace,
	},
)

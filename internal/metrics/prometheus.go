package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TranslationsTotal counts resolved translation jobs by outcome
	// (delivered, failed, protocol_violation, download_failed).
	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadgw_translations_total",
			Help: "Total number of resolved translation jobs",
		},
		[]string{"outcome"},
	)

	// TranslationsInFlight tracks jobs currently held in the store.
	TranslationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadgw_translations_in_flight",
			Help: "Number of translation jobs currently tracked",
		},
	)

	// UpstreamRequestDuration tracks upstream API call latency per operation.
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadgw_upstream_request_duration_seconds",
			Help:    "Duration of calls to the upstream CAD API in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"operation"},
	)

	// WebhooksTotal counts inbound webhook notifications by disposition.
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadgw_webhooks_total",
			Help: "Total number of webhook notifications received",
		},
		[]string{"disposition"},
	)
)

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelbot_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelbot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelbot_turns_total",
			Help: "Total number of conversation turns by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	DegradedStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelbot_degraded_steps_total",
			Help: "Enrichment or side-effect steps that failed without aborting a turn.",
		},
		[]string{"kind"},
	)

	SearchDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelbot_search_decisions_total",
			Help: "Search decisions returned by the language model.",
		},
		[]string{"decision"},
	)

	ProviderCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelbot_provider_call_duration_seconds",
			Help:    "Latency of calls to external providers.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelbot_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TurnsTotal,
		DegradedStepsTotal,
		SearchDecisionsTotal,
		ProviderCallDuration,
		RateLimitedTotal,
	)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ContentUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vedicroots", Name: "content_updates_total", Help: "Number of content mutations by domain and operation."},
		[]string{"domain", "op"},
	)
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vedicroots", Name: "auth_failures_total", Help: "Number of failed authentication attempts by reason."},
		[]string{"reason"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vedicroots", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vedicroots", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ContentUpdates)
	reg.MustRegister(AuthFailures)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

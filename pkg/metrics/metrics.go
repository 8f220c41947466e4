package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scavhunt", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scavhunt", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scavhunt", Name: "auth_failures_total", Help: "Rejected bearer tokens by internal reason."},
		[]string{"reason"},
	)
	JWKSFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scavhunt", Name: "jwks_fetches_total", Help: "Remote key-set fetches by result."},
		[]string{"result"},
	)
	ProfileWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scavhunt", Name: "profile_writes_total", Help: "Profile store writes by operation."},
		[]string{"op"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(AuthFailures)
	reg.MustRegister(JWKSFetches)
	reg.MustRegister(ProfileWrites)
}

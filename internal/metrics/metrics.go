// Package metrics defines the service's Prometheus metrics. Standalone so
// both the HTTP layer and the auth flow can record without import cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginStarts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_starts_total",
		Help: "Login flows started, by provider",
	}, []string{"provider"})

	LoginResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_results_total",
		Help: "Login callback outcomes, by provider and result",
	}, []string{"provider", "result"})

	CallbackLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auth_callback_duration_seconds",
		Help:    "Time to complete the callback, provider round-trips included",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"provider"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests, by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Login callback result labels.
const (
	ResultOK            = "ok"
	ResultStateMismatch = "state_mismatch"
	ResultStateExpired  = "state_expired"
	ResultInvalidGrant  = "invalid_grant"
	ResultProviderDown  = "provider_unavailable"
	ResultMalformed     = "malformed_response"
	ResultUnauthorized  = "unauthorized"
	ResultInternalError = "internal_error"
)

// Register registers all metrics on reg (or the default registerer if nil).
// Double registration is tolerated so tests can call it freely.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		LoginStarts, LoginResults, CallbackLatency, HTTPRequests, HTTPDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

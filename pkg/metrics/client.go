package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records the outbound API traffic of a terminal.
type ClientMetrics struct {
	requestDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	forcedLogouts   prometheus.Counter
}

// NewClientMetrics registers the client metrics on the provided
// registerer. A nil registerer yields a no-op collector set.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Duration of backend API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_refresh_total",
		Help: "Access token refresh attempts by outcome.",
	}, []string{"outcome"})
	forcedLogouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forced_logout_total",
		Help: "Sessions invalidated after an unrecoverable auth failure.",
	})
	reg.MustRegister(requestDuration, refreshes, forcedLogouts)
	return &ClientMetrics{
		requestDuration: requestDuration,
		refreshes:       refreshes,
		forcedLogouts:   forcedLogouts,
	}
}

// ObserveRequest records one completed API call.
func (c *ClientMetrics) ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	if c == nil || c.requestDuration == nil {
		return
	}
	c.requestDuration.
		WithLabelValues(method, normalizeLabel(endpoint), statusClass(status)).
		Observe(duration.Seconds())
}

// IncRefresh counts a refresh attempt with the given outcome.
func (c *ClientMetrics) IncRefresh(outcome string) {
	if c == nil || c.refreshes == nil {
		return
	}
	c.refreshes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncForcedLogout counts a full session invalidation.
func (c *ClientMetrics) IncForcedLogout() {
	if c == nil || c.forcedLogouts == nil {
		return
	}
	c.forcedLogouts.Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", status/100)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

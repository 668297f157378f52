// Package metrics defines the Prometheus metrics of the admin console. It is
// the single source of truth for metric names, labels and help strings.
//
// All metrics are registered on the default registry at package init via
// promauto and exposed by the console's /metrics route.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

const namespace = "usermgmt_console"

// ── Backend client metrics ───────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the user-management backend.
// Labels:
//   - code: HTTP status code returned by the backend
//   - method: HTTP method
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Total number of requests sent to the user-management backend.",
	},
	[]string{"code", "method"},
)

// BackendRequestDuration measures backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests to the user-management backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// BackendInFlight tracks requests currently waiting on the backend.
var BackendInFlight = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "in_flight_requests",
		Help:      "Number of backend requests currently in flight.",
	},
)

// InstrumentTransport wraps next with the backend metrics.
func InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(BackendInFlight,
		promhttp.InstrumentRoundTripperCounter(BackendRequestsTotal,
			promhttp.InstrumentRoundTripperDuration(BackendRequestDuration, next),
		),
	)
}

// ── Session metrics ──────────────────────────────────────────────────────────

// SessionChecksTotal counts session validity checks.
// Label:
//   - result: "valid" or "invalid"
var SessionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_total",
		Help:      "Total number of session validity checks, by result.",
	},
	[]string{"result"},
)

// NotificationsTotal counts notifications emitted by the controllers.
// Label:
//   - type: default, info, success, warning or error
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications emitted, by type.",
	},
	[]string{"type"},
)

// ObserveSessionCheck records the outcome of a session validity check.
func ObserveSessionCheck(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	SessionChecksTotal.WithLabelValues(result).Inc()
}

type countingNotifier struct {
	next ports.Notifier
}

func (c countingNotifier) Notify(n domain.Notification) {
	NotificationsTotal.WithLabelValues(string(n.Type)).Inc()
	c.next.Notify(n)
}

// CountNotifications counts every notification passed on to next.
func CountNotifications(next ports.Notifier) ports.Notifier {
	return countingNotifier{next: next}
}

// ProfileImageUploadsTotal counts finished profile image uploads.
// Label:
//   - result: "success" or "error"
var ProfileImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_image_uploads_total",
		Help:      "Total number of profile image uploads, by result.",
	},
	[]string{"result"},
)

// ── Console HTTP metrics ─────────────────────────────────────────────────────

// HTTPRequestsTotal counts requests served by the console API.
// Labels:
//   - method: HTTP method
//   - route: registered route pattern (e.g. "/api/users/:username")
//   - code: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of console API requests.",
	},
	[]string{"method", "route", "code"},
)

// HTTPRequestDuration measures console API handler latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of console API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

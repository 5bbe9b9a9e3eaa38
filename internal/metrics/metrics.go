// Package metrics holds the Prometheus collectors for roomshare.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomshare",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roomshare",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route"},
	)

	// SubscriptionsActive counts live collection subscriptions that have not stopped.
	SubscriptionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "roomshare",
			Subsystem: "live",
			Name:      "subscriptions_active",
			Help:      "Live collection subscriptions currently open.",
		},
		[]string{"kind"},
	)

	// SnapshotsDelivered counts full result sets handed to subscribers.
	SnapshotsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomshare",
			Subsystem: "live",
			Name:      "snapshots_delivered_total",
			Help:      "Snapshots delivered to live subscribers.",
		},
		[]string{"kind"},
	)

	// SubscriptionErrors counts subscriptions terminated by a query failure.
	SubscriptionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomshare",
			Subsystem: "live",
			Name:      "subscription_errors_total",
			Help:      "Live subscriptions terminated by a query error.",
		},
		[]string{"kind"},
	)

	// HouseOperations counts membership operations by name and outcome.
	HouseOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomshare",
			Subsystem: "house",
			Name:      "operations_total",
			Help:      "House membership operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	// WebSocketClients is the number of connected live feed clients.
	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "roomshare",
			Subsystem: "websocket",
			Name:      "clients",
			Help:      "Connected WebSocket live feed clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		SubscriptionsActive,
		SnapshotsDelivered,
		SubscriptionErrors,
		HouseOperations,
		WebSocketClients,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Outcome is "ok" for a nil error and "error" otherwise.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRequest records one handled HTTP request. route is the mux pattern,
// not the raw path, to keep label cardinality bounded.
func ObserveRequest(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

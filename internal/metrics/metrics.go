// Package metrics defines the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lingo_connect"

var (
	// FriendRequestEvents counts lifecycle transitions.
	// Labels: event (sent, accepted, rejected, cooldown_blocked, cooldown_cleared, seen)
	FriendRequestEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "friend_requests",
		Name:      "events_total",
		Help:      "Friend request lifecycle events.",
	}, []string{"event"})

	// CountCacheLookups counts unseen-count cache lookups by result (hit, miss, error).
	CountCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "friend_requests",
		Name:      "count_cache_lookups_total",
		Help:      "Unseen count cache lookups.",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "active_streams",
		Help:      "Open notification count streams.",
	})
)

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yeartiles",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route template, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "yeartiles",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Wallpaper composition and PNG encoding time.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

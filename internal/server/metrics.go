package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	routeLabel  = "route"
	codeLabel   = "code"
	resultLabel = "result"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heightfield_http_requests",
		Help: "The number of HTTP requests served.",
	}, []string{
		routeLabel,
		codeLabel,
	})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "heightfield_http_latency",
		Help: "The time to serve an HTTP request.",
	}, []string{
		routeLabel,
	})

	rayCasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heightfield_ray_casts",
		Help: "The number of rays cast against the terrain.",
	}, []string{
		resultLabel,
	})
)

func instrumentRequest(route string, status int, elapsed time.Duration) {
	httpRequests.With(prometheus.Labels{
		routeLabel: route,
		codeLabel:  strconv.Itoa(status),
	}).Inc()

	httpLatency.With(prometheus.Labels{
		routeLabel: route,
	}).Observe(elapsed.Seconds())
}

func instrumentRayCast(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	rayCasts.With(prometheus.Labels{
		resultLabel: result,
	}).Inc()
}

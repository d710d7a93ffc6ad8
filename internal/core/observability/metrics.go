// Package observability holds the service's Prometheus collectors and the
// helpers the request path uses to record them.
package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	transformRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transform_requests_total",
			Help: "Transform requests by payload kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	pipelineSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transform_pipeline_selections_total",
			Help: "Pipeline selections by result.",
		},
		[]string{"result"},
	)

	transformPoints = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transform_points_total",
			Help: "Positions and vertices run through a pipeline.",
		},
	)

	verticesRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityjson_vertices_removed_total",
			Help: "CityJSON vertices removed after compression, by reason.",
		},
		[]string{"reason"},
	)

	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Response cache results by outcome.",
		},
		[]string{"outcome"},
	)

	cacheOpTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Cache backend operations by result.",
		},
		[]string{"op", "result"},
	)

	cacheOpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_duration_seconds",
			Help:    "Latency of cache backend operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"op", "result"},
	)

	reloadLagSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "exclusion_reload_lag_seconds",
			Help: "Age of the last applied exclusion update.",
		},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		transformRequests,
		pipelineSelections,
		transformPoints,
		verticesRemoved,
		cacheResults,
		cacheOpTotal,
		cacheOpDurationSeconds,
		reloadLagSeconds,
	}
}

// Init registers the collectors with reg. It may be called again with the
// same or another registry.
func Init(reg prometheus.Registerer, enabled bool) {
	if !enabled || reg == nil {
		return
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

// ObserveTransform counts one transform request; kind is point, geojson or
// cityjson.
func ObserveTransform(kind, outcome string) {
	transformRequests.WithLabelValues(kind, outcome).Inc()
}

func ObserveSelection(result string) {
	pipelineSelections.WithLabelValues(result).Inc()
}

func AddTransformedPoints(n int) {
	if n > 0 {
		transformPoints.Add(float64(n))
	}
}

func AddVerticesRemoved(reason string, n int) {
	if n > 0 {
		verticesRemoved.WithLabelValues(reason).Add(float64(n))
	}
}

func IncCacheHit()  { cacheResults.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheResults.WithLabelValues("miss").Inc() }

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	cacheOpTotal.WithLabelValues(op, res).Inc()
	cacheOpDurationSeconds.WithLabelValues(op, res).Observe(durationSeconds)
}

func SetReloadLagSeconds(v float64) { reloadLagSeconds.Set(v) }

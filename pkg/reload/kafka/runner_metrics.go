package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metricSet struct {
	msgs    *prometheus.CounterVec
	apply   *prometheus.CounterVec
	proc    *prometheus.HistogramVec
	flushes *prometheus.CounterVec

	// version is the last applied update version per dedupe key.
	version *prometheus.GaugeVec
}

func newMetricSet(r prometheus.Registerer) *metricSet {
	m := &metricSet{
		msgs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reload_msgs_total",
				Help: "Exclusion update messages by result.",
			},
			[]string{"result"},
		),
		apply: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reload_apply_total",
				Help: "Exclusion updates applied by op, plus skipped stale versions.",
			},
			[]string{"action"},
		),
		proc: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reload_processing_seconds",
				Help:    "Time from decode to flushed cache for one update.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"op"},
		),
		flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reload_cache_flush_total",
				Help: "Response cache flush attempts after an update, by result.",
			},
			[]string{"result"},
		),
		version: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reload_applied_version",
				Help: "Last fully applied update version per source (reset under \"*reset\").",
			},
			[]string{"key"},
		),
	}
	if r != nil {
		r.MustRegister(m.msgs, m.apply, m.proc, m.flushes, m.version)
	}
	return m
}

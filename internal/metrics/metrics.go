// Package metrics exposes Prometheus instrumentation for resolution passes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pass outcomes used as the "outcome" label.
const (
	OutcomeReady  = "ready"
	OutcomeFailed = "failed"
)

// Recorder holds the resolution metrics. A nil *Recorder is a valid no-op.
type Recorder struct {
	passes        *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	kernels       prometheus.Gauge
	bodies        prometheus.Gauge
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meridian_resolution_passes_total",
				Help: "Total number of resolution passes by outcome.",
			},
			[]string{"outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meridian_stage_duration_seconds",
				Help:    "Duration of each resolution stage in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"stage"},
		),
		kernels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meridian_kernels_loaded",
			Help: "Number of ephemeris kernels loaded by the last pass.",
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meridian_bodies_resolved",
			Help: "Number of bodies materialized by the last successful pass.",
		}),
	}
	for _, c := range []prometheus.Collector{r.passes, r.stageDuration, r.kernels, r.bodies} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// PassDone counts a finished pass.
func (r *Recorder) PassDone(outcome string) {
	if r == nil {
		return
	}
	r.passes.WithLabelValues(outcome).Inc()
}

// SetKernels records the size of the active kernel set.
func (r *Recorder) SetKernels(n int) {
	if r == nil {
		return
	}
	r.kernels.Set(float64(n))
}

// SetBodies records how many bodies the last pass produced.
func (r *Recorder) SetBodies(n int) {
	if r == nil {
		return
	}
	r.bodies.Set(float64(n))
}

// Handler returns the Prometheus metrics HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Package promsink exports tendon solve events as Prometheus metrics.
//
//	sink := promsink.New(prometheus.DefaultRegisterer)
//	armature.SetEventSink(sink)
//
// Every metric carries an "armature" label with the armature's name.
package promsink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phanxgames/tendon"
)

const namespace = "tendon"

// Sink is a tendon.EventSink that records solve counts, durations and the
// remaining error per armature. It is safe for concurrent use, so one Sink
// can serve armatures solved on different goroutines.
type Sink struct {
	solves     *prometheus.CounterVec
	iterations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	errors     *prometheus.GaugeVec
	segments   *prometheus.GaugeVec
}

// New registers the sink's metrics with reg and returns the sink. It panics
// if the metrics are already registered, like promauto.
func New(reg prometheus.Registerer) *Sink {
	f := promauto.With(reg)
	return &Sink{
		solves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Number of Solve calls.",
		}, []string{"armature"}),
		iterations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Solver sweeps run, ordinary and stabilizing.",
		}, []string{"armature"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall time of one Solve call.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"armature"}),
		errors: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "error",
			Help:      "Weighted pin error after the last Solve call.",
		}, []string{"armature"}),
		segments: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "segments",
			Help:      "Segments visited by the last Solve call.",
		}, []string{"armature"}),
	}
}

// EmitEvent records ev.
func (s *Sink) EmitEvent(ev tendon.SolveEvent) {
	s.solves.WithLabelValues(ev.Armature).Inc()
	s.iterations.WithLabelValues(ev.Armature).Add(float64(ev.Iterations + ev.StabilizationPasses))
	s.duration.WithLabelValues(ev.Armature).Observe(ev.Duration.Seconds())
	s.errors.WithLabelValues(ev.Armature).Set(ev.Error)
	s.segments.WithLabelValues(ev.Armature).Set(float64(ev.Segments))
}

// Forget drops the series of the named armature, for armatures that have
// been discarded.
func (s *Sink) Forget(armature string) {
	s.solves.DeleteLabelValues(armature)
	s.iterations.DeleteLabelValues(armature)
	s.duration.DeleteLabelValues(armature)
	s.errors.DeleteLabelValues(armature)
	s.segments.DeleteLabelValues(armature)
}

// Package prom adapts shuffle.Recorder to github.com/prometheus/client_golang.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flier/shuffle/pkg/shuffle"
)

// Recorder implements shuffle.Recorder on top of a dedicated set of
// Prometheus collectors. Register it with a prometheus.Registerer before
// wiring it into shuffle.WithRecorder.
type Recorder struct {
	draws     *prometheus.CounterVec
	resets    prometheus.Counter
	size      prometheus.Gauge
	genLow    prometheus.Gauge
	genHigh   prometheus.Gauge
}

var _ shuffle.Recorder = (*Recorder)(nil)

// NewRecorder builds a Recorder whose collectors carry the given namespace
// and subsystem (both may be empty).
func NewRecorder(namespace, subsystem string) *Recorder {
	return &Recorder{
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "draws_total",
			Help:      "Number of items drawn from the shuffler, by draw kind.",
		}, []string{"kind"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generation_resets_total",
			Help:      "Number of times the generation counter wrapped and was reset.",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items",
			Help:      "Current number of items held by the shuffler.",
		}),
		genLow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generation_low",
			Help:      "Lowest generation currently present in the tree.",
		}),
		genHigh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generation_high",
			Help:      "Highest generation currently present in the tree.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (r *Recorder) Describe(ch chan<- *prometheus.Desc) {
	r.draws.Describe(ch)
	ch <- r.resets.Desc()
	ch <- r.size.Desc()
	ch <- r.genLow.Desc()
	ch <- r.genHigh.Desc()
}

// Collect implements prometheus.Collector.
func (r *Recorder) Collect(ch chan<- prometheus.Metric) {
	r.draws.Collect(ch)
	ch <- r.resets
	ch <- r.size
	ch <- r.genLow
	ch <- r.genHigh
}

// ObserveDraw implements shuffle.Recorder.
func (r *Recorder) ObserveDraw(kind string) {
	r.draws.WithLabelValues(kind).Inc()
}

// ObserveReset implements shuffle.Recorder.
func (r *Recorder) ObserveReset() {
	r.resets.Inc()
}

// SetSize implements shuffle.Recorder.
func (r *Recorder) SetSize(n int) {
	r.size.Set(float64(n))
}

// SetGenerationSpread implements shuffle.Recorder.
func (r *Recorder) SetGenerationSpread(lo, hi uint64) {
	r.genLow.Set(float64(lo))
	r.genHigh.Set(float64(hi))
}

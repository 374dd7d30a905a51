package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives per-phase measurements.
type Metrics interface {
	ObserveCollect(frame *Frame, d time.Duration)
	ObserveExecute(frame *Frame, faults int, d time.Duration)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) ObserveCollect(*Frame, time.Duration)      {}
func (NopMetrics) ObserveExecute(*Frame, int, time.Duration) {}

// PrometheusMetrics exports pipeline measurements as Prometheus collectors
// under the canopy_pipeline namespace.
type PrometheusMetrics struct {
	frames      prometheus.Counter
	interrupted prometheus.Counter
	commands    prometheus.Counter
	skipped     prometheus.Counter
	stale       prometheus.Counter
	faults      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	const ns, sub = "canopy", "pipeline"
	m := &PrometheusMetrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "frames_total",
			Help: "Frames collected.",
		}),
		interrupted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "frames_interrupted_total",
			Help: "Frames whose collection was cancelled before every node was visited.",
		}),
		commands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "draw_commands_total",
			Help: "Draw closures collected.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "skipped_nodes_total",
			Help: "Nodes excluded by the visibility policy.",
		}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "stale_backends_total",
			Help: "Render calls skipped because the backend outlived its element.",
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "render_faults_total",
			Help: "Backend failures isolated during a paint cycle.",
		}, []string{"phase"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub, Name: "phase_duration_seconds",
			Help:    "Time spent per paint phase.",
			Buckets: []float64{.0001, .0005, .001, .002, .004, .008, .016, .033, .066, .1},
		}, []string{"phase"}),
	}
	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.frames, m.interrupted, m.commands, m.skipped, m.stale, m.faults, m.duration}
}

// ObserveCollect implements Metrics.
func (m *PrometheusMetrics) ObserveCollect(frame *Frame, d time.Duration) {
	m.frames.Inc()
	if frame.Interrupted {
		m.interrupted.Inc()
	}
	m.commands.Add(float64(len(frame.Commands)))
	m.skipped.Add(float64(frame.Skipped))
	m.stale.Add(float64(frame.Stale))
	m.faults.WithLabelValues("collect").Add(float64(len(frame.Faults)))
	m.duration.WithLabelValues("collect").Observe(d.Seconds())
}

// ObserveExecute implements Metrics.
func (m *PrometheusMetrics) ObserveExecute(_ *Frame, faults int, d time.Duration) {
	m.faults.WithLabelValues("execute").Add(float64(faults))
	m.duration.WithLabelValues("execute").Observe(d.Seconds())
}

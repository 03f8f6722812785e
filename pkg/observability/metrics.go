package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/canopy/pkg/domain"
)

// Metrics records tick and node activity on Prometheus collectors.
type Metrics struct {
	Ticks          *prometheus.CounterVec
	TickDuration   prometheus.Histogram
	NodeStarts     *prometheus.CounterVec
	NodeTerminated *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canopy",
				Name:      "ticks_total",
				Help:      "Root ticks by resulting status.",
			},
			[]string{"status"},
		),
		TickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "canopy",
				Name:      "tick_duration_seconds",
				Help:      "Duration of a root tick.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		NodeStarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canopy",
				Name:      "node_starts_total",
				Help:      "Node runs started, by node kind.",
			},
			[]string{"kind"},
		),
		NodeTerminated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canopy",
				Name:      "node_terminations_total",
				Help:      "Node runs terminated, by node kind and terminal status.",
			},
			[]string{"kind", "status"},
		),
	}
	for _, c := range []prometheus.Collector{m.Ticks, m.TickDuration, m.NodeStarts, m.NodeTerminated} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeStarts.WithLabelValues(e.Kind).Inc()
		},
		OnNodeTerminate: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeTerminated.WithLabelValues(e.Kind, e.Status.String()).Inc()
		},
		OnTick: func(_ context.Context, e *domain.TickEvent) {
			m.Ticks.WithLabelValues(e.Status.String()).Inc()
			m.TickDuration.Observe(e.Duration.Seconds())
		},
	}
}

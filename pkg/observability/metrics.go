package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/gaea/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	reg prometheus.Registerer

	Renders        *prometheus.CounterVec
	Skips          *prometheus.CounterVec
	Actions        *prometheus.CounterVec
	SiblingUpdates prometheus.Counter
	Mounted        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// Collectors already registered on reg are reused, so several engines can share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reg: reg,
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gaea_renders_total",
			Help: "Total number of instance renders",
		}, []string{"component"}),
		Skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gaea_render_skips_total",
			Help: "Total number of re-renders skipped by change detection",
		}, []string{"component"}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gaea_actions_total",
			Help: "Total number of dispatched actions",
		}, []string{"trigger", "action"}),
		SiblingUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gaea_sibling_updates_total",
			Help: "Total number of sibling variable updates",
		}),
		Mounted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gaea_mounted_instances",
			Help: "Number of currently mounted instances",
		}),
	}

	var err error
	m.Renders, err = register(reg, m.Renders)
	if err != nil {
		return nil, err
	}
	m.Skips, err = register(reg, m.Skips)
	if err != nil {
		return nil, err
	}
	m.Actions, err = register(reg, m.Actions)
	if err != nil {
		return nil, err
	}
	m.SiblingUpdates, err = register(reg, m.SiblingUpdates)
	if err != nil {
		return nil, err
	}
	m.Mounted, err = register(reg, m.Mounted)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// WatchSubscriptions exports fn as the gaea_subscriptions gauge.
func (m *Metrics) WatchSubscriptions(fn func() int) error {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gaea_subscriptions",
		Help: "Number of live event bus subscriptions",
	}, func() float64 { return float64(fn()) })
	return m.reg.Register(g)
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMount: func(_ context.Context, _ *domain.InstanceEvent) {
			m.Mounted.Inc()
		},
		OnUnmount: func(_ context.Context, _ *domain.InstanceEvent) {
			m.Mounted.Dec()
		},
		OnRender: func(_ context.Context, e *domain.InstanceEvent) {
			m.Renders.WithLabelValues(e.ComponentKey).Inc()
		},
		OnSkip: func(_ context.Context, e *domain.InstanceEvent) {
			m.Skips.WithLabelValues(e.ComponentKey).Inc()
		},
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			m.Actions.WithLabelValues(e.Trigger, e.Action).Inc()
		},
		OnSiblingUpdate: func(_ context.Context, _ *domain.SiblingEvent) {
			m.SiblingUpdates.Inc()
		},
	}
}

package conversation

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "chatlist"

// Metrics holds the Prometheus collectors of a Manager. Counters are live as
// soon as the manager exists; Register exposes them on a registry.
type Metrics struct {
	Changes       *prometheus.CounterVec
	StoreErrors   prometheus.Counter
	DroppedEvents prometheus.Counter

	conversations prometheus.GaugeFunc
	messages      prometheus.GaugeFunc
}

func newMetrics(m *Manager) *Metrics {
	return &Metrics{
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "conversation",
			Name:      "changes_total",
			Help:      "Structural list changes by operation.",
		}, []string{"op"}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Failed store writes.",
		}),
		DroppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "conversation",
			Name:      "dropped_events_total",
			Help:      "Events dropped for slow subscribers.",
		}),
		conversations: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "conversations",
			Help:      "Open conversations.",
		}, func() float64 { return float64(len(m.IDs())) }),
		messages: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "messages",
			Help:      "Messages across all open conversations.",
		}, func() float64 { return float64(m.totalMessages()) }),
	}
}

func (mt *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{mt.Changes, mt.StoreErrors, mt.DroppedEvents, mt.conversations, mt.messages}
}

// Register adds every collector to reg. Registering twice is a no-op.
// Collectors left behind by another manager are replaced, so the gauges
// always describe the manager registered last.
func (mt *Metrics) Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range mt.collectors() {
		err := reg.Register(c)
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			if err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if are.ExistingCollector == c {
			continue
		}
		reg.Unregister(are.ExistingCollector)
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Unregister removes the collectors from reg.
func (mt *Metrics) Unregister(reg prometheus.Registerer) {
	for _, c := range mt.collectors() {
		reg.Unregister(c)
	}
}

// observe counts a change. It runs as part of the list observer chain.
func (mt *Metrics) observe(c Change) {
	mt.Changes.WithLabelValues(c.Op.String()).Inc()
}

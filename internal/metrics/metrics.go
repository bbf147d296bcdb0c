package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for task transitions, published
// events and KPI reads. A nil *Metrics is valid and records nothing.
type Metrics struct {
	transitions     *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	kpiQueries      *prometheus.CounterVec
	subscribers     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "task_transitions_total",
				Help: "Task mutations by operation and result category",
			},
			[]string{"operation", "result"},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "task_events_published_total",
				Help: "Task lifecycle events published, per channel delivery",
			},
			[]string{"event"},
		),
		publishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "task_event_publish_failures_total",
				Help: "Task lifecycle events that could not be handed to the transport",
			},
			[]string{"event"},
		),
		kpiQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpi_queries_total",
				Help: "KPI snapshot computations by scope",
			},
			[]string{"scope"},
		),
		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "event_subscribers",
				Help: "Currently connected event stream subscribers",
			},
		),
	}

	reg.MustRegister(
		m.transitions,
		m.eventsPublished,
		m.publishFailures,
		m.kpiQueries,
		m.subscribers,
	)

	return m
}

func (m *Metrics) Transition(operation, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) EventPublished(event string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(event).Inc()
}

func (m *Metrics) PublishFailed(event string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) KPIQuery(scope string) {
	if m == nil {
		return
	}
	m.kpiQueries.WithLabelValues(scope).Inc()
}

func (m *Metrics) SubscriberConnected() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *Metrics) SubscriberDisconnected() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}

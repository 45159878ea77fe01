package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/snapcopy/api/internal/instance"
)

type Options struct {
	Labels prometheus.Labels
}

func New(o Options) instance.Prometheus {
	return &Instance{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "relay_connections",
			Help:        "The number of open realtime connections",
			ConstLabels: o.Labels,
		}),
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "relay_events_received_total",
			Help:        "The number of events received from clients",
			ConstLabels: o.Labels,
		}, []string{"type"}),
		eventsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "relay_events_rejected_total",
			Help:        "The number of client events that were not processed",
			ConstLabels: o.Labels,
		}, []string{"type", "reason"}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relay_deliveries_total",
			Help:        "The number of frames enqueued to connections",
			ConstLabels: o.Labels,
		}),
		deliveryDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relay_deliveries_dropped_total",
			Help:        "The number of frames lost because a connection was full or closed",
			ConstLabels: o.Labels,
		}),
		transitionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relay_presence_transitions_dropped_total",
			Help:        "The number of presence transitions dropped on a full buffer",
			ConstLabels: o.Labels,
		}),
		statusesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relay_statuses_swept_total",
			Help:        "The number of expired statuses deleted by the sweeper",
			ConstLabels: o.Labels,
		}),
	}
}

type Instance struct {
	connections        prometheus.Gauge
	eventsReceived     *prometheus.CounterVec
	eventsRejected     *prometheus.CounterVec
	delivered          prometheus.Counter
	deliveryDropped    prometheus.Counter
	transitionsDropped prometheus.Counter
	statusesSwept      prometheus.Counter
}

func (m *Instance) Register(r prometheus.Registerer) {
	r.MustRegister(
		m.connections,
		m.eventsReceived,
		m.eventsRejected,
		m.delivered,
		m.deliveryDropped,
		m.transitionsDropped,
		m.statusesSwept,
	)
}

func (m *Instance) ConnectionOpened() {
	m.connections.Inc()
}

func (m *Instance) ConnectionClosed() {
	m.connections.Dec()
}

func (m *Instance) EventReceived(eventType string) {
	m.eventsReceived.WithLabelValues(eventType).Inc()
}

func (m *Instance) EventRejected(eventType string, reason string) {
	m.eventsRejected.WithLabelValues(eventType, reason).Inc()
}

func (m *Instance) Delivered(n int) {
	m.delivered.Add(float64(n))
}

func (m *Instance) DeliveryDropped(n int) {
	m.deliveryDropped.Add(float64(n))
}

func (m *Instance) PresenceTransitionDropped() {
	m.transitionsDropped.Inc()
}

func (m *Instance) StatusesSwept(n int64) {
	m.statusesSwept.Add(float64(n))
}

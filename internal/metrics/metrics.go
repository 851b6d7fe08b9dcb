// Package metrics exposes the service's Prometheus collectors. A nil
// *Metrics is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "support"

type Metrics struct {
	connections     prometheus.Gauge
	pushDelivered   prometheus.Counter
	pushDropped     prometheus.Counter
	messages        prometheus.Counter
	claims          *prometheus.CounterVec
	inboundFrames   *prometheus.CounterVec
	idleDeactivated prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Open WebSocket sessions.",
		}),
		pushDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_delivered_total",
			Help:      "Payloads enqueued to a session.",
		}),
		pushDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_dropped_total",
			Help:      "Payloads dropped because a session was full or closed.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messages persisted.",
		}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Thread claim attempts by result.",
		}, []string{"result"}),
		inboundFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_inbound_frames_total",
			Help:      "Inbound WebSocket frames by action.",
		}, []string{"action"}),
		idleDeactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "threads_idle_deactivated_total",
			Help:      "Threads flagged inactive by the idle sweep.",
		}),
	}

	reg.MustRegister(
		m.connections,
		m.pushDelivered,
		m.pushDropped,
		m.messages,
		m.claims,
		m.inboundFrames,
		m.idleDeactivated,
	)
	return m
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) PushDelivered() {
	if m != nil {
		m.pushDelivered.Inc()
	}
}

func (m *Metrics) PushDropped() {
	if m != nil {
		m.pushDropped.Inc()
	}
}

func (m *Metrics) MessageStored() {
	if m != nil {
		m.messages.Inc()
	}
}

// Claim records a claim attempt; result is "ok", "conflict" or "error".
func (m *Metrics) Claim(result string) {
	if m != nil {
		m.claims.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) InboundFrame(action string) {
	if m != nil {
		m.inboundFrames.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) IdleDeactivated(n int) {
	if m != nil {
		m.idleDeactivated.Add(float64(n))
	}
}

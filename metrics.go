package mqtt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus counters for client traffic. Pass it to a client
// with WithMetrics. A nil *Metrics disables collection.
type Metrics struct {
	PacketsSent     *prometheus.CounterVec
	PacketsReceived *prometheus.CounterVec
	BytesSent       prometheus.Counter
	BytesReceived   prometheus.Counter
	ConnectionsLost prometheus.Counter
}

// NewMetrics creates a Metrics instance registered with reg. Use
// prometheus.DefaultRegisterer for the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "mqtt"
	}

	factory := promauto.With(reg)

	return &Metrics{
		PacketsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "packets_sent_total",
				Help:      "Number of MQTT packets sent, by packet type",
			},
			[]string{"type"},
		),
		PacketsReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "packets_received_total",
				Help:      "Number of MQTT packets received, by packet type",
			},
			[]string{"type"},
		),
		BytesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_sent_total",
				Help:      "Number of MQTT packet bytes sent",
			},
		),
		BytesReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_received_total",
				Help:      "Number of MQTT packet bytes received",
			},
		),
		ConnectionsLost: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connections_lost_total",
				Help:      "Number of connections lost to transport failures",
			},
		),
	}
}

func (m *Metrics) observeSent(pt PacketType, n int) {
	if m == nil {
		return
	}

	m.PacketsSent.WithLabelValues(pt.String()).Inc()
	m.BytesSent.Add(float64(n))
}

func (m *Metrics) observeReceived(pt PacketType, n int) {
	if m == nil {
		return
	}

	m.PacketsReceived.WithLabelValues(pt.String()).Inc()
	m.BytesReceived.Add(float64(n))
}

func (m *Metrics) observeConnectionLost() {
	if m == nil {
		return
	}

	m.ConnectionsLost.Inc()
}

package hub

import "github.com/prometheus/client_golang/prometheus"

// Delivery results recorded by the registry.
const (
	resultQueued = "queued"
	resultFailed = "failed"
	resultSlow   = "slow_consumer"
	resultClosed = "closed"
)

// Metrics holds the registry's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	connections prometheus.Gauge
	broadcasts  prometheus.Counter
	deliveries  *prometheus.CounterVec
}

// NewMetrics creates and registers the hub collectors. A nil registerer disables metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relay",
			Subsystem: "hub",
			Name:      "connections",
			Help:      "Number of registered subscriber channels",
		}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "hub",
			Name:      "broadcasts_total",
			Help:      "Total number of broadcasts started",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "hub",
			Name:      "deliveries_total",
			Help:      "Frames handed to subscriber channels by result",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.connections, m.broadcasts, m.deliveries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) setConnections(n int) {
	if m == nil {
		return
	}
	m.connections.Set(float64(n))
}

func (m *Metrics) broadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}

func (m *Metrics) delivery(result string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(result).Inc()
}

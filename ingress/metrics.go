package ingress

import "github.com/prometheus/client_golang/prometheus"

// Submission results.
const (
	resultAccepted    = "accepted"
	resultDuplicate   = "duplicate"
	resultInvalid     = "invalid"
	resultCanceled    = "canceled"
	resultRateLimited = "rate_limited"
)

// Metrics holds the ingress collectors. A nil *Metrics records nothing.
type Metrics struct {
	submissions    *prometheus.CounterVec
	fanoutFailures prometheus.Counter
}

// NewMetrics creates and registers the ingress collectors. A nil registerer disables metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "ingress",
			Name:      "submissions_total",
			Help:      "Message submissions by result",
		}, []string{"result"}),
		fanoutFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "ingress",
			Name:      "fanout_failures_total",
			Help:      "Accepted messages whose fan-out target returned an error",
		}),
	}

	for _, c := range []prometheus.Collector{m.submissions, m.fanoutFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) fanoutFailed() {
	if m == nil {
		return
	}
	m.fanoutFailures.Inc()
}

package mail

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	sent   *prometheus.CounterVec
	failed *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	sent, err := registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mailkit",
		Subsystem: "mail",
		Name:      "sent_total",
		Help:      "Messages accepted by the mail transport.",
	}, []string{"transport"}))
	if err != nil {
		return nil, err
	}

	failed, err := registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mailkit",
		Subsystem: "mail",
		Name:      "failed_total",
		Help:      "Messages the mail transport failed to deliver.",
	}, []string{"transport"}))
	if err != nil {
		return nil, err
	}

	return &metrics{sent: sent, failed: failed}, nil
}

// registerCounter reuses a counter already registered under the same name,
// so several Mail instances can share one registry.
func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *metrics) observe(transport string, n int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failed.WithLabelValues(transport).Add(float64(n))
		return
	}
	m.sent.WithLabelValues(transport).Add(float64(n))
}

package gateway

import "github.com/prometheus/client_golang/prometheus"

// 转发丢弃原因
const (
	dropMalformed     = "malformed"
	dropUnsupported   = "unsupported_type"
	dropNotRegistered = "not_registered"
)

// Metrics 网关指标，nil 时所有方法为空操作
type Metrics struct {
	registered   prometheus.Gauge
	broadcasts   *prometheus.CounterVec
	failures     prometheus.Counter
	relayDropped *prometheus.CounterVec
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "registered_connections",
			Help: "Number of sessions holding a registered push connection.",
		}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "broadcasts_total",
			Help: "Number of broadcast events by type.",
		}, []string{"type"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "delivery_failures_total",
			Help: "Number of per-connection delivery failures.",
		}),
		relayDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "relay_dropped_total",
			Help: "Number of inbound relay messages dropped by reason.",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.registered, m.broadcasts, m.failures, m.relayDropped)
	}
	return m
}

func (m *Metrics) setRegistered(n int) {
	if m == nil {
		return
	}
	m.registered.Set(float64(n))
}

func (m *Metrics) broadcast(t EventType) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) deliveryFailed() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

func (m *Metrics) relayDrop(reason string) {
	if m == nil {
		return
	}
	m.relayDropped.WithLabelValues(reason).Inc()
}

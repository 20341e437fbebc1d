package websocket

import "github.com/prometheus/client_golang/prometheus"

// Metrics 服务端指标，nil 时所有方法为空操作
type Metrics struct {
	active     prometheus.Gauge
	opened     prometheus.Counter
	rejected   *prometheus.CounterVec
	sent       prometheus.Counter
	received   prometheus.Counter
	bytesSent  prometheus.Counter
	bytesRecvd prometheus.Counter
}

// NewMetrics 创建并注册指标，namespace 为空时取 "websocket"
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "websocket"
	}
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: namespace, Subsystem: "server", Name: name, Help: help}
	}

	m := &Metrics{
		active:     prometheus.NewGauge(prometheus.GaugeOpts(opts("connections_active", "Number of open websocket connections."))),
		opened:     prometheus.NewCounter(prometheus.CounterOpts(opts("connections_total", "Number of accepted websocket connections."))),
		rejected:   prometheus.NewCounterVec(prometheus.CounterOpts(opts("upgrades_rejected_total", "Number of rejected upgrade attempts.")), []string{"reason"}),
		sent:       prometheus.NewCounter(prometheus.CounterOpts(opts("messages_sent_total", "Number of frames written."))),
		received:   prometheus.NewCounter(prometheus.CounterOpts(opts("messages_received_total", "Number of frames read."))),
		bytesSent:  prometheus.NewCounter(prometheus.CounterOpts(opts("bytes_sent_total", "Payload bytes written."))),
		bytesRecvd: prometheus.NewCounter(prometheus.CounterOpts(opts("bytes_received_total", "Payload bytes read."))),
	}
	if reg != nil {
		reg.MustRegister(m.active, m.opened, m.rejected, m.sent, m.received, m.bytesSent, m.bytesRecvd)
	}
	return m
}

func (m *Metrics) connectionOpened() {
	if m == nil {
		return
	}
	m.active.Inc()
	m.opened.Inc()
}

func (m *Metrics) connectionClosed() {
	if m == nil {
		return
	}
	m.active.Dec()
}

func (m *Metrics) upgradeRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) messageSent(n int) {
	if m == nil {
		return
	}
	m.sent.Inc()
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) messageReceived(n int) {
	if m == nil {
		return
	}
	m.received.Inc()
	m.bytesRecvd.Add(float64(n))
}

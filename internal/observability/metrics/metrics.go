package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for bot event handling.
type BotMetrics struct {
	eventsTotal    *prometheus.CounterVec
	refundsTotal   *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "refundbot",
			Subsystem: "bot",
			Name:      "events_total",
			Help:      "Total dispatched Slack events",
		}, []string{"kind", "status"}),
		refundsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "refundbot",
			Subsystem: "bot",
			Name:      "refunds_total",
			Help:      "Total refund attempts by outcome",
		}, []string{"outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "refundbot",
			Subsystem: "bot",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound Slack webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.eventsTotal, m.refundsTotal, m.webhookLatency)
	return m
}

func (m *BotMetrics) ObserveEvent(kind, status string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(kind, status).Inc()
}

func (m *BotMetrics) ObserveRefund(outcome string) {
	if m == nil {
		return
	}
	m.refundsTotal.WithLabelValues(outcome).Inc()
}

func (m *BotMetrics) ObserveWebhookLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(endpoint).Observe(seconds)
}

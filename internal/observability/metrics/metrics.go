package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters for conversational turns.
type ConversationMetrics struct {
	turnsTotal  *prometheus.CounterVec
	polishTotal *prometheus.CounterVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sayhi",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total conversational turns by intent and outcome",
		}, []string{"intent", "outcome"}),
		polishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sayhi",
			Subsystem: "conversation",
			Name:      "polish_total",
			Help:      "Tone-polish attempts by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.polishTotal)
	return m
}

func (m *ConversationMetrics) ObserveTurn(intent, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, outcome).Inc()
}

func (m *ConversationMetrics) ObservePolish(result string) {
	if m == nil {
		return
	}
	m.polishTotal.WithLabelValues(result).Inc()
}

// PaymentMetrics exposes counters for checkout links and gateway callbacks.
type PaymentMetrics struct {
	linksTotal     *prometheus.CounterVec
	callbacksTotal *prometheus.CounterVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	m := &PaymentMetrics{
		linksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sayhi",
			Subsystem: "payments",
			Name:      "links_total",
			Help:      "Checkout links issued, by degraded flag",
		}, []string{"degraded"}),
		callbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sayhi",
			Subsystem: "payments",
			Name:      "callbacks_total",
			Help:      "Gateway notify callbacks by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.linksTotal, m.callbacksTotal)
	return m
}

func (m *PaymentMetrics) ObserveLink(degraded bool) {
	if m == nil {
		return
	}
	label := "false"
	if degraded {
		label = "true"
	}
	m.linksTotal.WithLabelValues(label).Inc()
}

func (m *PaymentMetrics) ObserveCallback(outcome string) {
	if m == nil {
		return
	}
	m.callbacksTotal.WithLabelValues(outcome).Inc()
}

// MessagingMetrics exposes counters for outbound sends.
type MessagingMetrics struct {
	outboundTotal *prometheus.CounterVec
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sayhi",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Outbound WhatsApp sends by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outboundTotal)
	return m
}

func (m *MessagingMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

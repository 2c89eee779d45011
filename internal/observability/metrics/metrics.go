package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters for the conversation engine.
type ChatMetrics struct {
	turnsTotal         *prometheus.CounterVec
	bookingsTotal      prometheus.Counter
	cancellationsTotal prometheus.Counter
	qaFallbackTotal    *prometheus.CounterVec
	timeoutsTotal      *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "museobook",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns processed, by step the turn resolved to",
		}, []string{"step"}),
		bookingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "museobook",
			Subsystem: "chat",
			Name:      "payment_orders_total",
			Help:      "Payment orders opened from the chat payment step",
		}),
		cancellationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "museobook",
			Subsystem: "chat",
			Name:      "cancellations_total",
			Help:      "Ticket cancellations completed through chat",
		}),
		qaFallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "museobook",
			Subsystem: "chat",
			Name:      "qa_fallback_total",
			Help:      "Free-form Q&A fallback calls",
		}, []string{"status"}),
		timeoutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "museobook",
			Subsystem: "chat",
			Name:      "session_timeouts_total",
			Help:      "Session timeout interventions",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsTotal, m.cancellationsTotal, m.qaFallbackTotal, m.timeoutsTotal)
	return m
}

func (m *ChatMetrics) ObserveTurn(step string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(step).Inc()
}

func (m *ChatMetrics) ObservePaymentOrder() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

func (m *ChatMetrics) ObserveCancellation() {
	if m == nil {
		return
	}
	m.cancellationsTotal.Inc()
}

func (m *ChatMetrics) ObserveQAFallback(status string) {
	if m == nil {
		return
	}
	m.qaFallbackTotal.WithLabelValues(status).Inc()
}

func (m *ChatMetrics) ObserveTimeout(kind string) {
	if m == nil {
		return
	}
	m.timeoutsTotal.WithLabelValues(kind).Inc()
}

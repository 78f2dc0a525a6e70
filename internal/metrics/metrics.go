package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the storefront counters. A nil *Metrics records nothing.
type Metrics struct {
	CartMutations    *prometheus.CounterVec
	CheckoutSessions *prometheus.CounterVec
	Reconciliations  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stokcer",
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation and result.",
		}, []string{"op", "result"}),
		CheckoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stokcer",
			Name:      "checkout_sessions_total",
			Help:      "Checkout session attempts by provider and result.",
		}, []string{"provider", "result"}),
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stokcer",
			Name:      "reconciliations_total",
			Help:      "Status reconciliations by source and outcome.",
		}, []string{"source", "outcome"}),
	}

	reg.MustRegister(m.CartMutations, m.CheckoutSessions, m.Reconciliations)
	return m
}

func (m *Metrics) CartMutation(op, result string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) CheckoutSession(provider, result string) {
	if m == nil {
		return
	}
	m.CheckoutSessions.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) Reconciliation(source, outcome string) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(source, outcome).Inc()
}

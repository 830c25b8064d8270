package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart, backend and checkout activity.
type StorefrontMetrics struct {
	quantityRejections *prometheus.CounterVec
	cartMutations      *prometheus.CounterVec
	backendCalls       *prometheus.CounterVec
	backendDuration    *prometheus.HistogramVec
	checkouts          *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	quantityRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_quantity_rejections_total",
		Help: "Quantity edits rejected by validation.",
	}, []string{"reason"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Committed basket mutations.",
	}, []string{"op"})
	backendCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_calls_total",
		Help: "Calls made to the storefront backend.",
	}, []string{"endpoint", "outcome"})
	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_backend_call_duration_seconds",
		Help:    "Latency of storefront backend calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkouts_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(quantityRejections, cartMutations, backendCalls, backendDuration, checkouts)
	return &StorefrontMetrics{
		quantityRejections: quantityRejections,
		cartMutations:      cartMutations,
		backendCalls:       backendCalls,
		backendDuration:    backendDuration,
		checkouts:          checkouts,
	}
}

// IncQuantityRejection counts a rejected quantity edit by error code.
func (m *StorefrontMetrics) IncQuantityRejection(reason string) {
	if m == nil || m.quantityRejections == nil {
		return
	}
	m.quantityRejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncCartMutation counts a committed basket mutation.
func (m *StorefrontMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveBackendCall records the outcome and latency of one backend call.
func (m *StorefrontMetrics) ObserveBackendCall(endpoint, outcome string, duration time.Duration) {
	if m == nil || m.backendCalls == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	m.backendCalls.WithLabelValues(endpoint, normalizeLabel(outcome)).Inc()
	m.backendDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncCheckout counts an order submission by outcome.
func (m *StorefrontMetrics) IncCheckout(outcome string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

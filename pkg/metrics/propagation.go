package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PropagationMetrics records payment-config propagation runs across the
// product catalog.
type PropagationMetrics struct {
	duration        *prometheus.HistogramVec
	success         *prometheus.CounterVec
	failure         *prometheus.CounterVec
	productsUpdated *prometheus.CounterVec
}

// NewPropagationMetrics registers the propagation metrics on the provided registerer.
func NewPropagationMetrics(reg prometheus.Registerer) *PropagationMetrics {
	if reg == nil {
		return &PropagationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_sync_duration_seconds",
		Help:    "Duration of payment-config propagation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_sync_success",
		Help: "Successful payment-config propagation runs.",
	}, []string{"trigger"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_sync_failure",
		Help: "Failed payment-config propagation runs.",
	}, []string{"trigger"})
	productsUpdated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_sync_products_updated",
		Help: "Product links rewritten by propagation runs.",
	}, []string{"trigger"})
	reg.MustRegister(duration, success, failure, productsUpdated)
	return &PropagationMetrics{
		duration:        duration,
		success:         success,
		failure:         failure,
		productsUpdated: productsUpdated,
	}
}

// ObserveDuration records the duration for the named trigger.
func (p *PropagationMetrics) ObserveDuration(trigger string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named trigger.
func (p *PropagationMetrics) IncSuccess(trigger string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncFailure increments the failure counter for the named trigger.
func (p *PropagationMetrics) IncFailure(trigger string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// AddProductsUpdated adds the rewritten link count for the named trigger.
func (p *PropagationMetrics) AddProductsUpdated(trigger string, count int64) {
	if p == nil || p.productsUpdated == nil || count <= 0 {
		return
	}
	p.productsUpdated.WithLabelValues(normalizeLabel(trigger)).Add(float64(count))
}

func normalizeLabel(trigger string) string {
	if trigger == "" {
		return "unknown"
	}
	return trigger
}

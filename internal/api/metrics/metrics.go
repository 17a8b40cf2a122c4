// Package metrics defines the storefront's custom Prometheus metrics. It is
// the single source of truth for metric names, labels and help strings.
//
// Metrics are registered on the Registerer passed to New, so tests can use a
// fresh prometheus.NewRegistry() per router.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/deckshop/storefront/internal/core/domain"
)

const namespace = "storefront"

// Recorder groups the custom metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	// OrdersPlacedTotal counts committed orders.
	OrdersPlacedTotal prometheus.Counter
	// OrderRevenueTotal sums order totals in currency units.
	OrderRevenueTotal prometheus.Counter
	// OrderUnits observes the number of units per order.
	OrderUnits prometheus.Histogram
	// OrdersRejectedTotal counts failed submissions.
	// Label:
	//   - reason: "empty_cart", "invalid_order", "in_flight" or "error"
	OrdersRejectedTotal *prometheus.CounterVec
	// IdempotentReplaysTotal counts submissions answered from an earlier order.
	IdempotentReplaysTotal prometheus.Counter
	// AuthAttemptsTotal counts signup and login outcomes.
	// Labels:
	//   - action: "signup" or "login"
	//   - result: "success" or "failure"
	AuthAttemptsTotal *prometheus.CounterVec
}

// New creates and registers the metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		OrdersPlacedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Total number of orders committed.",
		}),
		OrderRevenueTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_revenue_total",
			Help:      "Sum of committed order totals.",
		}),
		OrderUnits: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_units",
			Help:      "Units per committed order.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50},
		}),
		OrdersRejectedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Total number of rejected order submissions, by reason.",
		}, []string{"reason"}),
		IdempotentReplaysTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_idempotent_replays_total",
			Help:      "Total number of order submissions answered by an earlier order.",
		}),
		AuthAttemptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Total number of signup and login attempts, by outcome.",
		}, []string{"action", "result"}),
	}
}

// HandleOrderPlaced is an order event handler feeding the order counters.
func (r *Recorder) HandleOrderPlaced(_ context.Context, e domain.OrderEvent) error {
	if r == nil {
		return nil
	}
	r.OrdersPlacedTotal.Inc()
	r.OrderRevenueTotal.Add(e.Total.InexactFloat64())
	r.OrderUnits.Observe(float64(e.Units))
	return nil
}

func (r *Recorder) OrderRejected(reason string) {
	if r == nil {
		return
	}
	r.OrdersRejectedTotal.WithLabelValues(reason).Inc()
}

func (r *Recorder) OrderReplayed() {
	if r == nil {
		return
	}
	r.IdempotentReplaysTotal.Inc()
}

func (r *Recorder) AuthAttempt(action string, ok bool) {
	if r == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	r.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type OrderMetrics struct {
	OrdersCreatedTotal         prometheus.CounterVec
	PaymentsConfirmedTotal     prometheus.CounterVec
	OrdersExpiredTotal         prometheus.Counter
	OrdersDisputedTotal        prometheus.Counter
	ReconciliationTotal        prometheus.CounterVec
	GatewayErrorsTotal         prometheus.CounterVec
	OpenOrdersGauge            prometheus.Gauge
	PaymentConfirmationSeconds prometheus.Histogram
}

func NewOrderMetrics() *OrderMetrics {
	return &OrderMetrics{
		OrdersCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_orders_created_total",
				Help: "Total number of escrow orders created",
			},
			[]string{"currency"},
		),

		PaymentsConfirmedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_payments_confirmed_total",
				Help: "Total number of confirmed payments moved into escrow",
			},
			[]string{"currency"},
		),

		OrdersExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "escrow_orders_expired_total",
				Help: "Total number of orders whose payment window closed unpaid",
			},
		),

		OrdersDisputedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "escrow_orders_disputed_total",
				Help: "Total number of orders moved to dispute",
			},
		),

		ReconciliationTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_reconciliation_required_total",
				Help: "Confirmations that could not be auto-applied",
			},
			[]string{"reason"},
		),

		GatewayErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_gateway_errors_total",
				Help: "Payment gateway call failures",
			},
			[]string{"code"},
		),

		OpenOrdersGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "escrow_open_orders",
				Help: "Orders currently awaiting payment or confirmation",
			},
		),

		PaymentConfirmationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "escrow_payment_confirmation_seconds",
				Help:    "Time from charge creation to payment confirmation",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
}

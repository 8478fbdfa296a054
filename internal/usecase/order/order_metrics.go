package usecase

import (
	"time"

	"github.com/yuanbr/escrow-order-service/internal/domain"
)

func (uc *DefaultOrderUsecase) recordOrderCreated(order *domain.Order) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.OrdersCreatedTotal.WithLabelValues(order.AmountInfo.Currency).Inc()
	uc.Metrics.OpenOrdersGauge.Inc()
}

func (uc *DefaultOrderUsecase) recordPaymentConfirmed(order *domain.Order, confirmedAt time.Time) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.PaymentsConfirmedTotal.WithLabelValues(order.AmountInfo.Currency).Inc()
	uc.Metrics.OpenOrdersGauge.Dec()
	uc.Metrics.PaymentConfirmationSeconds.Observe(confirmedAt.Sub(order.CreatedAt).Seconds())
}

func (uc *DefaultOrderUsecase) recordOrderExpired() {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.OrdersExpiredTotal.Inc()
	uc.Metrics.OpenOrdersGauge.Dec()
}

func (uc *DefaultOrderUsecase) recordOrderDisputed() {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.OrdersDisputedTotal.Inc()
}

func (uc *DefaultOrderUsecase) recordReconciliation(reason string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.ReconciliationTotal.WithLabelValues(reason).Inc()
}

func (uc *DefaultOrderUsecase) recordGatewayError(code string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.GatewayErrorsTotal.WithLabelValues(code).Inc()
}

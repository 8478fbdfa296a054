package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuanbr/escrow-order-service/internal/domain"
	publisher "github.com/yuanbr/escrow-order-service/internal/infrastructure/kafka"
	"go.uber.org/zap"
)

// ConfirmPayment is the single authoritative edge into FUNDS_HELD. It is
// called by both the poll watcher and the provider webhook; the CAS on
// PAYMENT_PENDING guarantees at most one of them applies the transition.
func (uc *DefaultOrderUsecase) ConfirmPayment(ctx context.Context, orderID string, paidCents int64) error {
	order, err := uc.OrderRepo.GetOrderByID(orderID)
	if err != nil {
		return err
	}

	switch order.Status {
	case domain.StatusFundsHeld, domain.StatusShipped, domain.StatusFinalized, domain.StatusDisputed:
		// Already funded.
		return nil
	case domain.StatusExpired:
		return uc.flagLateConfirmation(order, paidCents)
	case domain.StatusPaymentPending:
	default:
		return fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidState)
	}

	// The window may have closed before the watcher or sweeper wrote
	// EXPIRED. The deadline decides, not the stored status.
	if uc.Clock.Now().After(order.PaymentDeadline) {
		uc.expireOrder(order.ID)
		return uc.flagLateConfirmation(order, paidCents)
	}

	if paidCents != order.AmountInfo.DestCents {
		return uc.flagAmountMismatch(order, paidCents)
	}

	now := uc.Clock.Now()
	err = uc.OrderRepo.CompareAndSetStatus(order.ID, domain.StatusPaymentPending, domain.StatusFundsHeld, &domain.OrderPatch{PaidAt: &now})
	if errors.Is(err, domain.ErrStaleTransition) {
		current, rerr := uc.OrderRepo.GetOrderByID(order.ID)
		if rerr != nil {
			return rerr
		}
		if current.Status == domain.StatusFundsHeld || current.Status.CanDispute() {
			// The concurrent signal won; nothing left to do.
			return nil
		}
		if current.Status == domain.StatusExpired {
			return uc.flagLateConfirmation(current, paidCents)
		}
		return fmt.Errorf("order %s moved to %s: %w", order.ID, current.Status, domain.ErrStaleTransition)
	}
	if err != nil {
		return err
	}

	uc.stopPaymentWatch(order.ID)
	uc.recordPaymentConfirmed(order, now)
	uc.Log.Info("payment confirmed, funds held in escrow",
		zap.String("order_id", order.ID),
		zap.Int64("paid_cents", paidCents),
	)
	uc.publishOrderEvent(order, publisher.EventPaymentConfirmed, domain.StatusFundsHeld)

	return nil
}

// Late and mismatched confirmations are never auto-applied: the buyer may
// already have been refunded or re-quoted. They land in a manual queue.
func (uc *DefaultOrderUsecase) flagLateConfirmation(order *domain.Order, paidCents int64) error {
	note := fmt.Sprintf("confirmation of %d cents arrived after the payment window closed", paidCents)
	if err := uc.OrderRepo.MarkReconciliation(order.ID, note); err != nil {
		return err
	}

	uc.recordReconciliation("late_confirmation")
	uc.Log.Warn("late payment confirmation for expired order",
		zap.String("order_id", order.ID),
		zap.Int64("paid_cents", paidCents),
	)

	return fmt.Errorf("order %s: %s: %w", order.ID, note, domain.ErrReconciliationRequired)
}

func (uc *DefaultOrderUsecase) flagAmountMismatch(order *domain.Order, paidCents int64) error {
	note := fmt.Sprintf("provider reports %d cents paid, order expects %d cents", paidCents, order.AmountInfo.DestCents)
	if err := uc.OrderRepo.MarkReconciliation(order.ID, note); err != nil {
		return err
	}

	uc.recordReconciliation("amount_mismatch")
	uc.Log.Warn("paid amount does not match order total",
		zap.String("order_id", order.ID),
		zap.Int64("paid_cents", paidCents),
		zap.Int64("expected_cents", order.AmountInfo.DestCents),
	)

	return fmt.Errorf("order %s: %s: %w", order.ID, note, domain.ErrReconciliationRequired)
}

// startPaymentWatch spawns the cancellable poll loop for one order. At
// most one watcher runs per order id.
func (uc *DefaultOrderUsecase) startPaymentWatch(orderID, correlationID string, deadline time.Time) {
	ctx, cancel := context.WithCancel(context.Background())

	uc.watchMu.Lock()
	if _, exists := uc.watchers[orderID]; exists {
		uc.watchMu.Unlock()
		cancel()
		return
	}
	uc.watchers[orderID] = cancel
	uc.watchMu.Unlock()

	go uc.watchPayment(ctx, orderID, correlationID, deadline)
}

func (uc *DefaultOrderUsecase) stopPaymentWatch(orderID string) {
	uc.watchMu.Lock()
	cancel, ok := uc.watchers[orderID]
	delete(uc.watchers, orderID)
	uc.watchMu.Unlock()

	if ok {
		cancel()
	}
}

func (uc *DefaultOrderUsecase) watchPayment(ctx context.Context, orderID, correlationID string, deadline time.Time) {
	defer uc.stopPaymentWatch(orderID)

	ticker := time.NewTicker(uc.Cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !uc.Clock.Now().Before(deadline) {
				uc.expireOrder(orderID)
				return
			}

			callCtx, cancel := context.WithTimeout(ctx, uc.Cfg.GatewayTimeout)
			state, err := uc.Gateway.QueryStatus(callCtx, correlationID)
			cancel()
			if err != nil {
				if ge, ok := domain.AsGatewayError(err); ok {
					uc.recordGatewayError(ge.Code)
				}
				uc.Log.Warn("gateway status query failed",
					zap.String("order_id", orderID),
					zap.Error(err),
				)
				continue
			}

			switch state.Status {
			case domain.ChargeConfirmed:
				if err := uc.ConfirmPayment(ctx, orderID, state.PaidCents); err != nil {
					uc.Log.Error("failed to apply payment confirmation",
						zap.String("order_id", orderID),
						zap.Error(err),
					)
				}
				return
			case domain.ChargeExpired:
				uc.expireOrder(orderID)
				return
			case domain.ChargePending:
			}
		}
	}
}

// expireOrder closes the payment window. Losing the CAS means another path
// already moved the order on; that is not an error.
func (uc *DefaultOrderUsecase) expireOrder(orderID string) {
	err := uc.OrderRepo.CompareAndSetStatus(orderID, domain.StatusPaymentPending, domain.StatusExpired, nil)
	if errors.Is(err, domain.ErrStaleTransition) {
		return
	}
	if err != nil {
		uc.Log.Error("failed to expire order", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	uc.stopPaymentWatch(orderID)
	uc.recordOrderExpired()
	uc.Log.Info("payment window closed, order expired", zap.String("order_id", orderID))

	if order, err := uc.OrderRepo.GetOrderByID(orderID); err == nil {
		uc.publishOrderEvent(order, publisher.EventOrderExpired, domain.StatusExpired)
	}
}

// ResumePaymentWatches re-arms the poll loop for every order that was
// awaiting confirmation when the process last stopped. Orders already past
// their deadline are left to the expiry sweeper.
func (uc *DefaultOrderUsecase) ResumePaymentWatches() error {
	orders, err := uc.OrderRepo.GetOrdersByStatus(domain.StatusPaymentPending)
	if err != nil {
		return err
	}

	now := uc.Clock.Now()
	resumed := 0
	for _, order := range orders {
		if !order.PaymentDeadline.After(now) {
			continue
		}
		uc.startPaymentWatch(order.ID, order.ChargeReference, order.PaymentDeadline)
		resumed++
	}

	if resumed > 0 {
		uc.Log.Info("resumed payment watches", zap.Int("count", resumed))
	}

	return nil
}

// ExpireOverdueOrders is the sweeper fallback for watchers lost to a
// restart. Runs periodically from the background tasks.
func (uc *DefaultOrderUsecase) ExpireOverdueOrders(ctx context.Context) error {
	orders, err := uc.OrderRepo.FindExpiredOrders(uc.Clock.Now())
	if err != nil {
		return err
	}

	for _, order := range orders {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		uc.expireOrder(order.ID)
	}

	return nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuanbr/escrow-order-service/internal/domain"
	"go.uber.org/zap"
)

// RequestCharge creates the instant-payment charge for an order and moves
// it into PAYMENT_PENDING. Safe to call again: an order that already has a
// live charge gets its stored handle back, never a second charge.
func (uc *DefaultOrderUsecase) RequestCharge(ctx context.Context, orderID string) (*domain.ChargeHandle, error) {
	order, err := uc.OrderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case domain.StatusPaymentPending:
		// Charge already exists. Re-arm the watcher in case the process
		// restarted since it was created.
		uc.startPaymentWatch(order.ID, order.ChargeReference, order.PaymentDeadline)
		return storedHandle(order), nil
	case domain.StatusAwaitingPayment:
	default:
		return nil, fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidState)
	}

	handle, err := uc.createChargeWithRetry(ctx, order)
	if err != nil {
		// Order stays AWAITING_PAYMENT; the buyer may retry without
		// risking a duplicate debit.
		return nil, err
	}

	deadline := uc.Clock.Now().Add(uc.Cfg.PaymentWindow)
	patch := &domain.OrderPatch{
		PaymentCode:     &handle.PaymentCode,
		PaymentQR:       &handle.QRCodeImage,
		PaymentLink:     &handle.PaymentLink,
		PaymentDeadline: &deadline,
	}

	err = uc.OrderRepo.CompareAndSetStatus(order.ID, domain.StatusAwaitingPayment, domain.StatusPaymentPending, patch)
	if errors.Is(err, domain.ErrStaleTransition) {
		// Another request won the race; the charge handle is shared via
		// the gateway idempotency anyway.
		current, rerr := uc.OrderRepo.GetOrderByID(order.ID)
		if rerr != nil {
			return nil, rerr
		}
		if current.Status == domain.StatusPaymentPending {
			return storedHandle(current), nil
		}
		return nil, fmt.Errorf("order %s moved to %s: %w", order.ID, current.Status, domain.ErrStaleTransition)
	}
	if err != nil {
		return nil, err
	}

	uc.Log.Info("charge created",
		zap.String("order_id", order.ID),
		zap.String("correlation_id", order.ChargeReference),
		zap.Time("payment_deadline", deadline),
	)

	uc.startPaymentWatch(order.ID, order.ChargeReference, deadline)

	return handle, nil
}

func (uc *DefaultOrderUsecase) createChargeWithRetry(ctx context.Context, order *domain.Order) (*domain.ChargeHandle, error) {
	var handle *domain.ChargeHandle
	var err error

	for attempt := 1; attempt <= uc.Cfg.ChargeAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, uc.Cfg.GatewayTimeout)
		handle, err = uc.Gateway.CreateCharge(callCtx, order.ChargeReference, order.AmountInfo.DestCents)
		cancel()
		if err == nil {
			return handle, nil
		}

		ge, ok := domain.AsGatewayError(err)
		if ok {
			uc.recordGatewayError(ge.Code)
		}
		if !ok || !ge.Transient {
			return nil, err
		}

		uc.Log.Warn("transient gateway error creating charge",
			zap.String("order_id", order.ID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < uc.Cfg.ChargeAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
	}

	return nil, fmt.Errorf("charge creation failed after %d attempts: %w", uc.Cfg.ChargeAttempts, err)
}

func storedHandle(order *domain.Order) *domain.ChargeHandle {
	return &domain.ChargeHandle{
		CorrelationID: order.ChargeReference,
		PaymentCode:   order.PaymentCode,
		QRCodeImage:   order.PaymentQR,
		PaymentLink:   order.PaymentLink,
		AmountCents:   order.AmountInfo.DestCents,
	}
}

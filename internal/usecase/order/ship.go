package usecase

import (
	"errors"
	"fmt"

	"github.com/yuanbr/escrow-order-service/internal/domain"
	publisher "github.com/yuanbr/escrow-order-service/internal/infrastructure/kafka"
	orderdto "github.com/yuanbr/escrow-order-service/internal/usecase/dto/order"
	"go.uber.org/zap"
)

// MarkShipped records the supplier's tracking reference and releases the
// order to the shipped stage. Marking an already-shipped order again is a
// no-op.
func (uc *DefaultOrderUsecase) MarkShipped(input *orderdto.MarkShippedInput) error {
	order, err := uc.OrderRepo.GetOrderByID(input.OrderID)
	if err != nil {
		return err
	}

	if order.Status == domain.StatusShipped {
		return nil
	}
	if input.TrackingCode == "" {
		return domain.ErrTrackingCodeRequired
	}

	err = uc.OrderRepo.CompareAndSetStatus(order.ID, domain.StatusFundsHeld, domain.StatusShipped, &domain.OrderPatch{
		TrackingCode: &input.TrackingCode,
	})
	if errors.Is(err, domain.ErrStaleTransition) {
		current, rerr := uc.OrderRepo.GetOrderByID(order.ID)
		if rerr != nil {
			return rerr
		}
		if current.Status == domain.StatusShipped {
			return nil
		}
		return fmt.Errorf("order %s is %s: %w", order.ID, current.Status, domain.ErrInvalidState)
	}
	if err != nil {
		return err
	}

	uc.Log.Info("order shipped",
		zap.String("order_id", order.ID),
		zap.String("tracking_code", input.TrackingCode),
	)
	uc.publishOrderEvent(order, publisher.EventOrderShipped, domain.StatusShipped)

	return nil
}

// FinalizeOrder confirms delivery; releasing the held funds to the
// supplier is handled downstream by the settlement consumer.
func (uc *DefaultOrderUsecase) FinalizeOrder(orderID string) error {
	order, err := uc.OrderRepo.GetOrderByID(orderID)
	if err != nil {
		return err
	}

	if order.Status == domain.StatusFinalized {
		return nil
	}

	err = uc.OrderRepo.CompareAndSetStatus(order.ID, domain.StatusShipped, domain.StatusFinalized, nil)
	if errors.Is(err, domain.ErrStaleTransition) {
		current, rerr := uc.OrderRepo.GetOrderByID(order.ID)
		if rerr != nil {
			return rerr
		}
		if current.Status == domain.StatusFinalized {
			return nil
		}
		return fmt.Errorf("order %s is %s: %w", order.ID, current.Status, domain.ErrInvalidState)
	}
	if err != nil {
		return err
	}

	uc.Log.Info("order finalized", zap.String("order_id", order.ID))
	uc.publishOrderEvent(order, publisher.EventOrderFinalized, domain.StatusFinalized)

	return nil
}

// OpenDispute freezes the order. Disputed orders are skipped by the
// watcher and the expiry sweeper; only manual resolution moves them.
func (uc *DefaultOrderUsecase) OpenDispute(input *orderdto.OpenDisputeInput) error {
	if input.Reason == "" {
		return domain.ErrDisputeReasonRequired
	}

	order, err := uc.OrderRepo.GetOrderByID(input.OrderID)
	if err != nil {
		return err
	}

	if !order.Status.CanDispute() {
		return fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrInvalidState)
	}

	err = uc.OrderRepo.CompareAndSetStatus(order.ID, order.Status, domain.StatusDisputed, &domain.OrderPatch{
		DisputeReason: &input.Reason,
	})
	if errors.Is(err, domain.ErrStaleTransition) {
		current, rerr := uc.OrderRepo.GetOrderByID(order.ID)
		if rerr != nil {
			return rerr
		}
		if current.Status == domain.StatusDisputed {
			return nil
		}
		return fmt.Errorf("order %s is %s: %w", order.ID, current.Status, domain.ErrInvalidState)
	}
	if err != nil {
		return err
	}

	uc.stopPaymentWatch(order.ID)
	uc.recordOrderDisputed()
	uc.Log.Info("dispute opened",
		zap.String("order_id", order.ID),
		zap.String("reason", input.Reason),
	)
	uc.publishOrderEvent(order, publisher.EventOrderDisputed, domain.StatusDisputed)

	return nil
}

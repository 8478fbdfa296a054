package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/yuanbr/escrow-order-service/internal/domain"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/postgres/mappers"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

var _ domain.OrderRepository = (*DefaultOrderRepository)(nil)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.Create(orderModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrdersByBuyerID(buyerID string) ([]*domain.Order, error) {
	return r.findOrders("buyer_id = ?", buyerID)
}

func (r *DefaultOrderRepository) GetOrdersBySupplierID(supplierID string) ([]*domain.Order, error) {
	return r.findOrders("supplier_id = ?", supplierID)
}

func (r *DefaultOrderRepository) GetOrdersByStatus(status domain.OrderStatus) ([]*domain.Order, error) {
	return r.findOrders("status = ?", string(status))
}

func (r *DefaultOrderRepository) findOrders(query string, arg string) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.
		Where(query, arg).
		Order("created_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, len(orderModels))
	for i, orderModel := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModel)
	}

	return orders, nil
}

// CompareAndSetStatus applies a single conditional UPDATE keyed on the
// expected prior status. Zero affected rows means another writer got there
// first: the caller re-reads and decides.
func (r *DefaultOrderRepository) CompareAndSetStatus(orderID string, expected, newStatus domain.OrderStatus, patch *domain.OrderPatch) error {
	updates := map[string]interface{}{
		"status":     newStatus,
		"updated_at": time.Now(),
	}
	if patch != nil {
		applyPatch(updates, patch)
	}

	res := r.DB.Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", orderID, expected).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleTransition
	}

	return nil
}

func applyPatch(updates map[string]interface{}, patch *domain.OrderPatch) {
	if patch.ChargeReference != nil {
		updates["charge_reference"] = *patch.ChargeReference
	}
	if patch.PaymentCode != nil {
		updates["payment_code"] = *patch.PaymentCode
	}
	if patch.PaymentQR != nil {
		updates["payment_qr"] = *patch.PaymentQR
	}
	if patch.PaymentLink != nil {
		updates["payment_link"] = *patch.PaymentLink
	}
	if patch.PaymentDeadline != nil {
		updates["payment_deadline"] = *patch.PaymentDeadline
	}
	if patch.PaidAt != nil {
		updates["paid_at"] = *patch.PaidAt
	}
	if patch.TrackingCode != nil {
		updates["tracking_code"] = *patch.TrackingCode
	}
	if patch.DisputeReason != nil {
		updates["dispute_reason"] = *patch.DisputeReason
	}
}

func (r *DefaultOrderRepository) MarkReconciliation(orderID string, note string) error {
	res := r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"reconciliation_required": true,
			"reconciliation_note":     note,
			"updated_at":              time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark order for reconciliation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (r *DefaultOrderRepository) FindExpiredOrders(now time.Time) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.
		Where("status = ?", domain.StatusPaymentPending).
		Where("payment_deadline < ?", now).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, len(orderModels))
	for i, orderModel := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModel)
	}

	return orders, nil
}

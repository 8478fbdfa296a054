package domain

import "time"

// OrderPatch carries the fields a status transition is allowed to touch.
// Amounts are deliberately absent: they are frozen at creation.
type OrderPatch struct {
	ChargeReference *string
	PaymentCode     *string
	PaymentQR       *string
	PaymentLink     *string
	PaymentDeadline *time.Time
	PaidAt          *time.Time
	TrackingCode    *string
	DisputeReason   *string
}

type OrderRepository interface {
	CreateOrder(order *Order) error
	GetOrderByID(orderID string) (*Order, error)
	GetOrdersByBuyerID(buyerID string) ([]*Order, error)
	GetOrdersBySupplierID(supplierID string) ([]*Order, error)
	GetOrdersByStatus(status OrderStatus) ([]*Order, error)

	// CompareAndSetStatus moves the order from expected to newStatus and
	// applies the patch in one atomic update. Returns ErrStaleTransition
	// when the order is no longer in expected status.
	CompareAndSetStatus(orderID string, expected, newStatus OrderStatus, patch *OrderPatch) error

	// MarkReconciliation flags the order for manual handling without
	// changing its status.
	MarkReconciliation(orderID string, note string) error

	// FindExpiredOrders returns orders still awaiting confirmation whose
	// payment deadline has passed.
	FindExpiredOrders(now time.Time) ([]*Order, error)
}

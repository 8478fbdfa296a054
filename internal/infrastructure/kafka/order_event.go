package publisher

import "time"

const (
	EventOrderCreated     = "OrderCreated"
	EventPaymentConfirmed = "PaymentConfirmed"
	EventOrderExpired     = "OrderExpired"
	EventOrderShipped     = "OrderShipped"
	EventOrderFinalized   = "OrderFinalized"
	EventOrderDisputed    = "OrderDisputed"
)

type OrderEvent struct {
	OrderID    string    `json:"order_id"`
	EventType  string    `json:"event_type"`
	Status     string    `json:"status"`
	BuyerID    string    `json:"buyer_id"`
	SupplierID string    `json:"supplier_id"`
	DestCents  int64     `json:"dest_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

package domain

import "time"

type OrderStatus string

const (
	StatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	StatusPaymentPending  OrderStatus = "PAYMENT_PENDING"
	StatusFundsHeld       OrderStatus = "FUNDS_HELD"
	StatusShipped         OrderStatus = "SHIPPED"
	StatusFinalized       OrderStatus = "FINALIZED"
	StatusDisputed        OrderStatus = "DISPUTED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// Order is an escrow deal between a Brazilian buyer and a Chinese supplier.
// All monetary fields are integer minor units: CNY fen on the source side,
// BRL centavos on the destination side.
type Order struct {
	ID          string
	BuyerID     string
	SupplierID  string
	Description string

	AmountInfo AmountInfo

	Status OrderStatus

	// ChargeReference is the correlation id used against the payment
	// provider. Set once when the first charge is requested, never reused
	// for a second charge attempt.
	ChargeReference string
	PaymentCode     string
	PaymentQR       string
	PaymentLink     string

	CreatedAt       time.Time
	UpdatedAt       time.Time
	PaymentDeadline time.Time
	PaidAt          *time.Time

	TrackingCode  string
	DisputeReason string

	ReconciliationRequired bool
	ReconciliationNote     string
}

type AmountInfo struct {
	SourceCents int64
	DestCents   int64
	FeeCents    int64
	Rate        float64
	Currency    string
}

// Terminal reports whether no further transition may leave the status.
func (s OrderStatus) Terminal() bool {
	return s == StatusFinalized || s == StatusDisputed || s == StatusExpired
}

// CanDispute is the guard for the dispute side-branch: only funded orders
// may be disputed.
func (s OrderStatus) CanDispute() bool {
	return s == StatusFundsHeld || s == StatusShipped
}

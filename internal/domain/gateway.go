package domain

import "context"

type ChargeStatus string

const (
	ChargePending   ChargeStatus = "PENDING"
	ChargeConfirmed ChargeStatus = "CONFIRMED"
	ChargeExpired   ChargeStatus = "EXPIRED"
)

// ChargeHandle is everything the buyer needs to pay a charge: a scannable
// QR image, the copy-paste payment string and the provider reference.
type ChargeHandle struct {
	CorrelationID string
	ProviderRef   string
	PaymentCode   string
	QRCodeImage   string
	PaymentLink   string
	AmountCents   int64
}

// ChargeState is the provider-reported state of a charge, including the
// amount actually paid so the caller can reconcile it against the order.
type ChargeState struct {
	Status    ChargeStatus
	PaidCents int64
}

// PaymentGateway abstracts the external instant-payment provider.
// CreateCharge must be idempotent per correlation id: calling it twice
// returns the existing charge, never a duplicate. QueryStatus is
// side-effect-free. Neither call ever mutates an Order.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, correlationID string, amountCents int64) (*ChargeHandle, error)
	QueryStatus(ctx context.Context, correlationID string) (*ChargeState, error)
}

package models

import (
	"time"

	"github.com/yuanbr/escrow-order-service/internal/domain"
)

type OrderModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	BuyerID     string `gorm:"index:idx_buyer"`
	SupplierID  string `gorm:"index:idx_supplier"`
	Description string

	SourceCents int64
	DestCents   int64
	FeeCents    int64
	Rate        float64
	Currency    string

	Status domain.OrderStatus `gorm:"index:idx_status_deadline"`

	ChargeReference string `gorm:"uniqueIndex:idx_charge_ref,where:charge_reference <> ''"`
	PaymentCode     string
	PaymentQR       string
	PaymentLink     string

	CreatedAt       time.Time `gorm:"index:idx_created_at"`
	UpdatedAt       time.Time
	PaymentDeadline time.Time `gorm:"index:idx_status_deadline"`
	PaidAt          *time.Time

	TrackingCode  string
	DisputeReason string

	ReconciliationRequired bool
	ReconciliationNote     string
}

package httpd

import (
	"time"

	"github.com/yuanbr/escrow-order-service/internal/domain"
	"github.com/yuanbr/escrow-order-service/internal/quote"
)

type QuoteReq struct {
	BuyerID           string  `json:"buyer_id"`
	SourceAmount      float64 `json:"source_amount"`
	DestinationBudget float64 `json:"destination_budget"`
}

type QuoteResp struct {
	SourceAmount float64 `json:"source_amount"`
	BaseAmount   float64 `json:"base_amount"`
	FeeAmount    float64 `json:"fee_amount"`
	TotalAmount  float64 `json:"total_amount"`
	Rate         float64 `json:"rate"`
	FeeRate      float64 `json:"fee_rate"`
}

type CreateOrderReq struct {
	BuyerID           string  `json:"buyer_id" validate:"required"`
	SupplierID        string  `json:"supplier_id" validate:"required,len=6,numeric"`
	Description       string  `json:"description"`
	SourceAmount      float64 `json:"source_amount"`
	DestinationBudget float64 `json:"destination_budget"`
}

// PaidCents is deliberately unvalidated: a push reporting zero or a wrong
// amount must still reach the lifecycle's reconciliation check.
type ConfirmPaymentReq struct {
	PaidCents int64 `json:"paid_cents"`
}

type ShipReq struct {
	TrackingCode string `json:"tracking_code" validate:"required"`
}

type DisputeReq struct {
	Reason string `json:"reason" validate:"required"`
}

type ChargeResp struct {
	CorrelationID string `json:"correlation_id"`
	PaymentCode   string `json:"payment_code"`
	QRCodeImage   string `json:"qr_code_image"`
	PaymentLink   string `json:"payment_link"`
	AmountCents   int64  `json:"amount_cents"`
}

type OrderResp struct {
	ID          string `json:"id"`
	BuyerID     string `json:"buyer_id"`
	SupplierID  string `json:"supplier_id"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`

	SourceCents int64   `json:"source_cents"`
	DestCents   int64   `json:"dest_cents"`
	FeeCents    int64   `json:"fee_cents"`
	Rate        float64 `json:"rate"`
	Currency    string  `json:"currency"`

	PaymentCode     string     `json:"payment_code,omitempty"`
	PaymentQR       string     `json:"payment_qr,omitempty"`
	PaymentLink     string     `json:"payment_link,omitempty"`
	PaymentDeadline *time.Time `json:"payment_deadline,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`

	TrackingCode  string `json:"tracking_code,omitempty"`
	DisputeReason string `json:"dispute_reason,omitempty"`

	ReconciliationRequired bool   `json:"reconciliation_required"`
	ReconciliationNote     string `json:"reconciliation_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toQuoteResp(q *quote.Quote) QuoteResp {
	return QuoteResp{
		SourceAmount: q.SourceAmount,
		BaseAmount:   q.BaseAmount,
		FeeAmount:    q.FeeAmount,
		TotalAmount:  q.TotalAmount,
		Rate:         q.Rate,
		FeeRate:      q.FeeRate,
	}
}

func toChargeResp(handle *domain.ChargeHandle) ChargeResp {
	return ChargeResp{
		CorrelationID: handle.CorrelationID,
		PaymentCode:   handle.PaymentCode,
		QRCodeImage:   handle.QRCodeImage,
		PaymentLink:   handle.PaymentLink,
		AmountCents:   handle.AmountCents,
	}
}

func toOrderResp(order *domain.Order) OrderResp {
	resp := OrderResp{
		ID:          order.ID,
		BuyerID:     order.BuyerID,
		SupplierID:  order.SupplierID,
		Description: order.Description,
		Status:      string(order.Status),

		SourceCents: order.AmountInfo.SourceCents,
		DestCents:   order.AmountInfo.DestCents,
		FeeCents:    order.AmountInfo.FeeCents,
		Rate:        order.AmountInfo.Rate,
		Currency:    order.AmountInfo.Currency,

		PaymentCode: order.PaymentCode,
		PaymentQR:   order.PaymentQR,
		PaymentLink: order.PaymentLink,
		PaidAt:      order.PaidAt,

		TrackingCode:  order.TrackingCode,
		DisputeReason: order.DisputeReason,

		ReconciliationRequired: order.ReconciliationRequired,
		ReconciliationNote:     order.ReconciliationNote,

		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if !order.PaymentDeadline.IsZero() {
		deadline := order.PaymentDeadline
		resp.PaymentDeadline = &deadline
	}
	return resp
}

func toOrderListResp(orders []*domain.Order) []OrderResp {
	resp := make([]OrderResp, len(orders))
	for i, order := range orders {
		resp[i] = toOrderResp(order)
	}
	return resp
}

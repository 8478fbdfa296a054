package mappers

import (
	"github.com/yuanbr/escrow-order-service/internal/domain"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:          order.ID,
		BuyerID:     order.BuyerID,
		SupplierID:  order.SupplierID,
		Description: order.Description,

		SourceCents: order.AmountInfo.SourceCents,
		DestCents:   order.AmountInfo.DestCents,
		FeeCents:    order.AmountInfo.FeeCents,
		Rate:        order.AmountInfo.Rate,
		Currency:    order.AmountInfo.Currency,

		Status: order.Status,

		ChargeReference: order.ChargeReference,
		PaymentCode:     order.PaymentCode,
		PaymentQR:       order.PaymentQR,
		PaymentLink:     order.PaymentLink,

		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		PaymentDeadline: order.PaymentDeadline,
		PaidAt:          order.PaidAt,

		TrackingCode:  order.TrackingCode,
		DisputeReason: order.DisputeReason,

		ReconciliationRequired: order.ReconciliationRequired,
		ReconciliationNote:     order.ReconciliationNote,
	}
}

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:          model.ID,
		BuyerID:     model.BuyerID,
		SupplierID:  model.SupplierID,
		Description: model.Description,

		AmountInfo: domain.AmountInfo{
			SourceCents: model.SourceCents,
			DestCents:   model.DestCents,
			FeeCents:    model.FeeCents,
			Rate:        model.Rate,
			Currency:    model.Currency,
		},

		Status: model.Status,

		ChargeReference: model.ChargeReference,
		PaymentCode:     model.PaymentCode,
		PaymentQR:       model.PaymentQR,
		PaymentLink:     model.PaymentLink,

		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		PaymentDeadline: model.PaymentDeadline,
		PaidAt:          model.PaidAt,

		TrackingCode:  model.TrackingCode,
		DisputeReason: model.DisputeReason,

		ReconciliationRequired: model.ReconciliationRequired,
		ReconciliationNote:     model.ReconciliationNote,
	}
}

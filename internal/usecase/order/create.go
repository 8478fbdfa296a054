package usecase

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/yuanbr/escrow-order-service/internal/domain"
	publisher "github.com/yuanbr/escrow-order-service/internal/infrastructure/kafka"
	"github.com/yuanbr/escrow-order-service/internal/quote"
	orderdto "github.com/yuanbr/escrow-order-service/internal/usecase/dto/order"
	"go.uber.org/zap"
)

var supplierCodeRe = regexp.MustCompile(`^\d{6}$`)

// CreateOrder freezes the quoted amounts into a new order. The exchange
// rate and fee are fixed here and never recomputed, so a rate change
// mid-flow cannot drift the amount the buyer was shown.
func (uc *DefaultOrderUsecase) CreateOrder(input *orderdto.CreateOrderInput) (*domain.Order, error) {
	if input.BuyerID == "" {
		return nil, fmt.Errorf("buyer_id is required")
	}
	if !supplierCodeRe.MatchString(input.SupplierID) {
		return nil, fmt.Errorf("supplier_id must be a 6-digit code")
	}

	q, err := uc.quoteFor(input)
	if err != nil {
		return nil, err
	}

	correlationID, err := newCorrelationID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate correlation id: %w", err)
	}

	now := uc.Clock.Now()
	order := &domain.Order{
		ID:          uuid.New().String(),
		BuyerID:     input.BuyerID,
		SupplierID:  input.SupplierID,
		Description: input.Description,
		AmountInfo: domain.AmountInfo{
			SourceCents: quote.MinorUnits(q.SourceAmount),
			DestCents:   quote.MinorUnits(q.TotalAmount),
			FeeCents:    quote.MinorUnits(q.FeeAmount),
			Rate:        q.Rate,
			Currency:    "BRL",
		},
		Status:          domain.StatusAwaitingPayment,
		ChargeReference: correlationID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.OrderRepo.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	uc.recordOrderCreated(order)
	uc.Log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("buyer_id", order.BuyerID),
		zap.Int64("dest_cents", order.AmountInfo.DestCents),
	)
	uc.publishOrderEvent(order, publisher.EventOrderCreated, order.Status)

	return order, nil
}

func (uc *DefaultOrderUsecase) quoteFor(input *orderdto.CreateOrderInput) (*quote.Quote, error) {
	switch {
	case input.SourceAmount > 0 && input.DestinationBudget > 0:
		return nil, fmt.Errorf("source_amount and destination_budget are mutually exclusive")
	case input.SourceAmount > 0:
		return uc.Calc.Convert(input.SourceAmount, input.BuyerID)
	case input.DestinationBudget > 0:
		return uc.Calc.Invert(input.DestinationBudget, input.BuyerID)
	default:
		return nil, domain.ErrInvalidAmount
	}
}

// Correlation ids are minted once per order and survive charge retries, so
// the provider can deduplicate repeated createCharge calls.
func newCorrelationID() (string, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return "", err
	}
	return idGenerator(), nil
}

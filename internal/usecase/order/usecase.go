package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/yuanbr/escrow-order-service/internal/domain"
	publisher "github.com/yuanbr/escrow-order-service/internal/infrastructure/kafka"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/metrics"
	"github.com/yuanbr/escrow-order-service/internal/quote"
	orderdto "github.com/yuanbr/escrow-order-service/internal/usecase/dto/order"
	"go.uber.org/zap"
)

type OrderUsecase interface {
	CreateOrder(input *orderdto.CreateOrderInput) (*domain.Order, error)
	RequestCharge(ctx context.Context, orderID string) (*domain.ChargeHandle, error)
	ConfirmPayment(ctx context.Context, orderID string, paidCents int64) error
	MarkShipped(input *orderdto.MarkShippedInput) error
	FinalizeOrder(orderID string) error
	OpenDispute(input *orderdto.OpenDisputeInput) error
	ExpireOverdueOrders(ctx context.Context) error
	ResumePaymentWatches() error

	GetOrderByID(orderID string) (*domain.Order, error)
	GetOrdersByBuyerID(buyerID string) ([]*domain.Order, error)
	GetOrdersBySupplierID(supplierID string) ([]*domain.Order, error)
}

// OrderEventPublisher is what the lifecycle needs from the event bus.
type OrderEventPublisher interface {
	PublishOrder(event publisher.OrderEvent) error
}

// LifecycleConfig bounds the payment confirmation flow. GatewayTimeout is
// the per-call budget for a single gateway request and is independent of
// PaymentWindow, the overall deadline for the buyer to pay.
type LifecycleConfig struct {
	PaymentWindow  time.Duration
	PollInterval   time.Duration
	GatewayTimeout time.Duration
	ChargeAttempts int
}

var _ OrderUsecase = (*DefaultOrderUsecase)(nil)

// DefaultOrderUsecase is the single writer of order status. Every
// transition goes through a compare-and-set on the expected prior status,
// so concurrent signals for the same order collapse to one applied edge.
type DefaultOrderUsecase struct {
	OrderRepo domain.OrderRepository
	Gateway   domain.PaymentGateway
	Publisher OrderEventPublisher
	Clock     domain.Clock
	Calc      *quote.Calculator
	Metrics   *metrics.OrderMetrics
	Log       *zap.Logger
	Cfg       LifecycleConfig

	watchMu  sync.Mutex
	watchers map[string]context.CancelFunc
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	gateway domain.PaymentGateway,
	eventPublisher OrderEventPublisher,
	clock domain.Clock,
	calc *quote.Calculator,
	orderMetrics *metrics.OrderMetrics,
	log *zap.Logger,
	cfg LifecycleConfig) *DefaultOrderUsecase {

	if cfg.ChargeAttempts <= 0 {
		cfg.ChargeAttempts = 1
	}

	return &DefaultOrderUsecase{
		OrderRepo: orderRepo,
		Gateway:   gateway,
		Publisher: eventPublisher,
		Clock:     clock,
		Calc:      calc,
		Metrics:   orderMetrics,
		Log:       log,
		Cfg:       cfg,
		watchers:  make(map[string]context.CancelFunc),
	}
}

func (uc *DefaultOrderUsecase) publishOrderEvent(order *domain.Order, eventType string, status domain.OrderStatus) {
	if uc.Publisher == nil {
		return
	}

	event := publisher.OrderEvent{
		OrderID:    order.ID,
		EventType:  eventType,
		Status:     string(status),
		BuyerID:    order.BuyerID,
		SupplierID: order.SupplierID,
		DestCents:  order.AmountInfo.DestCents,
		Currency:   order.AmountInfo.Currency,
		OccurredAt: uc.Clock.Now(),
	}

	go func(event publisher.OrderEvent) {
		if err := uc.Publisher.PublishOrder(event); err != nil {
			uc.Log.Error("failed to publish order event",
				zap.String("order_id", event.OrderID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
		}
	}(event)
}

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/yuanbr/escrow-order-service/internal/domain"
	publisher "github.com/yuanbr/escrow-order-service/internal/infrastructure/kafka"
	"github.com/yuanbr/escrow-order-service/internal/quote"
	"go.uber.org/zap"
)

// memOrderRepo is an in-memory OrderRepository with the same CAS contract
// as the Postgres implementation.
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	if o.PaidAt != nil {
		paidAt := *o.PaidAt
		clone.PaidAt = &paidAt
	}
	return &clone
}

func (r *memOrderRepo) CreateOrder(order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *memOrderRepo) GetOrderByID(orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *memOrderRepo) GetOrdersByBuyerID(buyerID string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []*domain.Order
	for _, order := range r.orders {
		if order.BuyerID == buyerID {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (r *memOrderRepo) GetOrdersBySupplierID(supplierID string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []*domain.Order
	for _, order := range r.orders {
		if order.SupplierID == supplierID {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (r *memOrderRepo) GetOrdersByStatus(status domain.OrderStatus) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []*domain.Order
	for _, order := range r.orders {
		if order.Status == status {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (r *memOrderRepo) CompareAndSetStatus(orderID string, expected, newStatus domain.OrderStatus, patch *domain.OrderPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != expected {
		return domain.ErrStaleTransition
	}

	order.Status = newStatus
	order.UpdatedAt = time.Now()
	if patch != nil {
		if patch.ChargeReference != nil {
			order.ChargeReference = *patch.ChargeReference
		}
		if patch.PaymentCode != nil {
			order.PaymentCode = *patch.PaymentCode
		}
		if patch.PaymentQR != nil {
			order.PaymentQR = *patch.PaymentQR
		}
		if patch.PaymentLink != nil {
			order.PaymentLink = *patch.PaymentLink
		}
		if patch.PaymentDeadline != nil {
			order.PaymentDeadline = *patch.PaymentDeadline
		}
		if patch.PaidAt != nil {
			paidAt := *patch.PaidAt
			order.PaidAt = &paidAt
		}
		if patch.TrackingCode != nil {
			order.TrackingCode = *patch.TrackingCode
		}
		if patch.DisputeReason != nil {
			order.DisputeReason = *patch.DisputeReason
		}
	}

	return nil
}

func (r *memOrderRepo) MarkReconciliation(orderID string, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.ReconciliationRequired = true
	order.ReconciliationNote = note
	return nil
}

func (r *memOrderRepo) FindExpiredOrders(now time.Time) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []*domain.Order
	for _, order := range r.orders {
		if order.Status == domain.StatusPaymentPending && order.PaymentDeadline.Before(now) {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

// fakeGateway confirms or expires charges on command.
type fakeGateway struct {
	mu           sync.Mutex
	status       domain.ChargeStatus
	paidCents    int64
	createFails  int
	createErr    error
	queryErr     error
	blockQueries bool
	createCalls  int
	queryCalls   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{status: domain.ChargePending}
}

func (g *fakeGateway) CreateCharge(ctx context.Context, correlationID string, amountCents int64) (*domain.ChargeHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createFails > 0 {
		g.createFails--
		err := g.createErr
		if g.createFails == 0 {
			// Fail budget spent: later calls succeed.
			g.createErr = nil
		}
		return nil, err
	}
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &domain.ChargeHandle{
		CorrelationID: correlationID,
		ProviderRef:   "prov-" + correlationID,
		PaymentCode:   "brcode-" + correlationID,
		QRCodeImage:   "https://qr.example/" + correlationID,
		PaymentLink:   "https://pay.example/" + correlationID,
		AmountCents:   amountCents,
	}, nil
}

func (g *fakeGateway) QueryStatus(ctx context.Context, correlationID string) (*domain.ChargeState, error) {
	g.mu.Lock()
	g.queryCalls++
	block := g.blockQueries
	err := g.queryErr
	state := &domain.ChargeState{Status: g.status, PaidCents: g.paidCents}
	g.mu.Unlock()

	if block {
		// Hung network call: only the caller's timeout releases it.
		<-ctx.Done()
		return nil, &domain.GatewayError{Code: domain.GatewayCodeTimeout, Transient: true, Err: ctx.Err()}
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (g *fakeGateway) setConfirmed(paidCents int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = domain.ChargeConfirmed
	g.paidCents = paidCents
}

func (g *fakeGateway) setExpired() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = domain.ChargeExpired
}

func (g *fakeGateway) setBlockQueries(block bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blockQueries = block
}

func (g *fakeGateway) setQueryErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queryErr = err
}

func (g *fakeGateway) queryCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queryCalls
}

func (g *fakeGateway) createCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createCalls
}

// fakeClock only moves when the test says so.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publisher.OrderEvent
}

func (p *fakePublisher) PublishOrder(event publisher.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) countType(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, event := range p.events {
		if event.EventType == eventType {
			n++
		}
	}
	return n
}

type testEnv struct {
	uc   *DefaultOrderUsecase
	repo *memOrderRepo
	gw   *fakeGateway
	clk  *fakeClock
	pub  *fakePublisher
}

func newTestEnv() *testEnv {
	repo := newMemOrderRepo()
	gw := newFakeGateway()
	clk := newFakeClock()
	pub := &fakePublisher{}

	uc := NewDefaultOrderUsecase(
		repo,
		gw,
		pub,
		clk,
		quote.NewCalculator(0.82, 0.05, map[string]float64{"vip-buyer": 0.03}),
		nil,
		zap.NewNop(),
		LifecycleConfig{
			PaymentWindow:  10 * time.Minute,
			PollInterval:   2 * time.Millisecond,
			GatewayTimeout: 100 * time.Millisecond,
			ChargeAttempts: 3,
		},
	)

	return &testEnv{uc: uc, repo: repo, gw: gw, clk: clk, pub: pub}
}

package background

import (
	"context"
	"time"

	usecase "github.com/yuanbr/escrow-order-service/internal/usecase/order"
	"go.uber.org/zap"
)

// BackgroundTasks runs the periodic jobs that keep order state honest when
// per-order watchers are lost, typically across a restart.
type BackgroundTasks struct {
	OrderUsecase  usecase.OrderUsecase
	SweepInterval time.Duration
	Log           *zap.Logger
}

func NewBackgroundTasks(orderUC usecase.OrderUsecase, sweepInterval time.Duration, log *zap.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		OrderUsecase:  orderUC,
		SweepInterval: sweepInterval,
		Log:           log,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startExpirySweep(ctx)
}

func (bt *BackgroundTasks) startExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(bt.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.OrderUsecase.ExpireOverdueOrders(ctx); err != nil {
				bt.Log.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

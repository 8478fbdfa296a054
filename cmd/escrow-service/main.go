package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/yuanbr/escrow-order-service/internal/app/background"
	"github.com/yuanbr/escrow-order-service/internal/config"
	httpd "github.com/yuanbr/escrow-order-service/internal/delivery/http"
	"github.com/yuanbr/escrow-order-service/internal/domain"
	publisher "github.com/yuanbr/escrow-order-service/internal/infrastructure/kafka"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/metrics"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/migrate"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/pix"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/postgres"
	"github.com/yuanbr/escrow-order-service/internal/infrastructure/postgres/repository"
	"github.com/yuanbr/escrow-order-service/internal/quote"
	usecase "github.com/yuanbr/escrow-order-service/internal/usecase/order"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	logger := mustInitLogger(cfg)
	defer logger.Sync()

	// Init database
	db := postgres.MustInitDB(cfg)
	if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Init order repo
	orderRepo := repository.NewDefaultOrderRepository(db)

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	kafkaPublisher := publisher.NewDefaultKafkaPublisher(brokers, cfg.KafkaService.Topic)
	defer kafkaPublisher.Close()

	// Init pix gateway client
	gateway := pix.NewClient(cfg.PixGateway.BaseURL, cfg.PixGateway.AppID, cfg.PixGateway.CallTimeout)

	orderMetrics := metrics.NewOrderMetrics()
	calc := quote.NewCalculator(cfg.Escrow.ExchangeRate, cfg.Escrow.FeeRate, cfg.Escrow.FeeOverrides)

	// Init order usecase
	uc := usecase.NewDefaultOrderUsecase(
		orderRepo,
		gateway,
		kafkaPublisher,
		domain.SystemClock{},
		calc,
		orderMetrics,
		logger,
		usecase.LifecycleConfig{
			PaymentWindow:  cfg.Escrow.PaymentWindow,
			PollInterval:   cfg.Escrow.PollInterval,
			GatewayTimeout: cfg.PixGateway.CallTimeout,
			ChargeAttempts: cfg.Escrow.ChargeAttempts,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Re-arm watchers for orders that were awaiting payment at shutdown
	if err := uc.ResumePaymentWatches(); err != nil {
		logger.Error("failed to resume payment watches", zap.Error(err))
	}

	backgroundTasks := background.NewBackgroundTasks(uc, cfg.Escrow.SweepInterval, logger)
	backgroundTasks.StartAll(ctx)

	handler := httpd.NewHandler(uc, calc, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: handler.Routes(),
	}

	go func() {
		logger.Info("http server started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
}

func mustInitLogger(cfg *config.EscrowConfig) *zap.Logger {
	var zapCfg zap.Config
	if cfg.Env == "prod" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogConfig.LogLevel)
	if err == nil {
		zapCfg.Level = level
	}

	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	return logger
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinema-tickets/config"
	"cinema-tickets/internal/cache"
	"cinema-tickets/internal/database"
	"cinema-tickets/internal/handler"
	"cinema-tickets/internal/payment"
	"cinema-tickets/internal/pricing"
	"cinema-tickets/internal/queue"
	"cinema-tickets/internal/repository"
	"cinema-tickets/internal/service"
	"cinema-tickets/internal/worker"
	apperrors "cinema-tickets/pkg/app_errors"
	"cinema-tickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.LoadConfig()

	if err := logger.SetLevel(cfg.Server.LogLevel); err != nil {
		logger.L.Fatal("invalid log level", zap.String("level", cfg.Server.LogLevel), zap.Error(err))
	}
	defer logger.L.Sync()

	if err := run(cfg); err != nil {
		logger.L.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	priceConfig, err := loadPriceConfig(cfg.Pricing.File)
	if err != nil {
		return err
	}

	rdb, err := database.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("initialize redis: %w", err)
	}
	defer rdb.Close()

	inventory := cache.NewRedisSeatInventoryManager(rdb, cfg.Screen.ID)
	if err := warmUpInventory(ctx, inventory, cfg.Screen); err != nil {
		return err
	}

	paymentService, cleanup, err := setupPayment(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer cleanup()

	ticketService := service.NewTicketService(paymentService, inventory, service.WithPriceConfig(priceConfig))

	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterHealthRoutes(router)
	handler.NewPurchaseHandler(ticketService).RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	shutdownError := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		logger.L.Info("shutting down server", zap.String("signal", s.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		err := srv.Shutdown(shutdownCtx)
		// 停止 worker 與 redis stream 訂閱
		cancel()
		shutdownError <- err
	}()

	logger.L.Info("starting server", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownError; err != nil {
		return err
	}

	logger.L.Info("stopped server", zap.String("addr", srv.Addr))
	return nil
}

func loadPriceConfig(path string) (*pricing.PriceConfig, error) {
	if path == "" {
		return pricing.DefaultConfig(), nil
	}
	priceConfig, err := pricing.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	logger.L.Info("pricing loaded", zap.String("file", path))
	return priceConfig, nil
}

// warmUpInventory 只在庫存不存在時預熱，重啟不會重置已售座位
func warmUpInventory(ctx context.Context, inventory cache.RedisSeatInventoryManager, screen config.ScreenConfig) error {
	remaining, err := inventory.GetRemaining(ctx)
	if err == nil {
		logger.L.Info("seat inventory found", zap.Int("screen_id", screen.ID), zap.Int("remaining", remaining))
		return nil
	}
	if !errors.Is(err, apperrors.ErrSeatInventoryNotFound) {
		return fmt.Errorf("read seat inventory: %w", err)
	}
	if err := inventory.WarmUpInventory(ctx, screen.Capacity); err != nil {
		return fmt.Errorf("warm up seat inventory: %w", err)
	}
	logger.L.Info("seat inventory warmed up", zap.Int("screen_id", screen.ID), zap.Int("capacity", screen.Capacity))
	return nil
}

// setupPayment 依 PAYMENT_PROVIDER 建立付款服務；queue 模式同時啟動結算 worker
func setupPayment(ctx context.Context, cfg *config.Config, rdb *redis.Client) (service.TicketPaymentService, func(), error) {
	switch cfg.Payment.Provider {
	case config.PaymentProviderStripe:
		if cfg.Payment.StripeSecretKey == "" {
			return nil, nil, errors.New("STRIPE_SECRET_KEY is required for the stripe payment provider")
		}
		stripe.Key = cfg.Payment.StripeSecretKey
		return payment.NewStripePaymentService(cfg.Payment.Currency), func() {}, nil

	case config.PaymentProviderQueue:
		var paymentQueue queue.PaymentQueue
		if cfg.Payment.UseRedisStream {
			q, err := queue.NewRedisStreamPaymentQueue(ctx, rdb, "", nil)
			if err != nil {
				return nil, nil, fmt.Errorf("initialize payment stream: %w", err)
			}
			if n, err := q.DeadLetterCount(ctx); err == nil && n > 0 {
				logger.L.Warn("payments waiting in dead-letter stream", zap.String("stream", queue.DeadLetterStreamKey), zap.Int64("count", n))
			}
			paymentQueue = q
		} else {
			paymentQueue = queue.NewMemoryPaymentQueue(1000)
		}

		pool, err := database.InitDatabase(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize database: %w", err)
		}

		paymentRepository := repository.NewPaymentRepository(pool)
		if err := paymentRepository.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure payments schema: %w", err)
		}

		if err := worker.NewPaymentWorker(paymentRepository, paymentQueue).Start(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("start payment worker: %w", err)
		}

		return payment.NewQueuedPaymentService(paymentQueue), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown payment provider %q", cfg.Payment.Provider)
	}
}

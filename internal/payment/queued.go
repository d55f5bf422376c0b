package payment

import (
	"context"
	"fmt"
	"time"

	"cinema-tickets/internal/model"
	"cinema-tickets/internal/queue"
	"cinema-tickets/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueuedPaymentService 將付款請求送進付款隊列，由 worker 非同步結算
type QueuedPaymentService struct {
	queue queue.PaymentQueue
	now   func() time.Time
}

func NewQueuedPaymentService(q queue.PaymentQueue) *QueuedPaymentService {
	return &QueuedPaymentService{
		queue: q,
		now:   time.Now,
	}
}

func (s *QueuedPaymentService) MakePayment(ctx context.Context, accountID int64, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("make payment: negative amount %d", amount)
	}

	req := &model.PaymentRequest{
		RequestID: uuid.New().String(),
		AccountID: accountID,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	}

	if err := s.queue.PublishPayment(ctx, req); err != nil {
		return fmt.Errorf("publish payment: %w", err)
	}

	logger.WithComponent("payment").Info("payment queued",
		zap.String("request_id", req.RequestID),
		zap.Int64("account_id", accountID),
		zap.Int64("amount", amount),
	)
	return nil
}

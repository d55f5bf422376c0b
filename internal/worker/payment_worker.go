package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-tickets/internal/model"
	"cinema-tickets/internal/queue"
	"cinema-tickets/internal/repository"
	"cinema-tickets/pkg/logger"

	"go.uber.org/zap"
)

type PaymentWorker interface {
	// 訂閱付款隊列
	Start(ctx context.Context) error
}

type PaymentWorkerImpl struct {
	repository repository.PaymentRepository
	queue      queue.PaymentQueue
	now        func() time.Time
}

func NewPaymentWorker(repository repository.PaymentRepository, queue queue.PaymentQueue) PaymentWorker {
	return &PaymentWorkerImpl{
		repository: repository,
		queue:      queue,
		now:        time.Now,
	}
}

func (w *PaymentWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribePayments(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("worker")
		for msg := range msgs {
			log := log.With(zap.String("request_id", msg.Data.RequestID), zap.Int("attempt", msg.Attempt))

			// 無法結算的付款不重試，交給隊列的 dead-letter
			if err := validateSettlement(msg.Data); err != nil {
				log.Error("payment rejected", zap.Error(err))
				msg.Nack(false)
				continue
			}

			created, err := w.repository.Settle(ctx, msg.Data, w.now().UTC())
			if err != nil {
				// 資料庫暫時不可用，留給隊列重試
				log.Warn("settle payment failed", zap.Error(err))
				msg.Nack(true)
				continue
			}

			if !created {
				log.Info("payment already settled")
			} else {
				log.Info("payment settled",
					zap.Int64("account_id", msg.Data.AccountID),
					zap.Int64("amount", msg.Data.Amount),
				)
			}
			msg.Ack()
		}
	}()
	return nil
}

func validateSettlement(p *model.PaymentRequest) error {
	switch {
	case p.RequestID == "":
		return errors.New("missing request id")
	case p.AccountID <= 0:
		return fmt.Errorf("invalid account id %d", p.AccountID)
	case p.Amount < 0:
		return fmt.Errorf("negative amount %d", p.Amount)
	}
	return nil
}

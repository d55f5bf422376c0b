package queue

import (
	"context"

	"cinema-tickets/internal/model"
	"cinema-tickets/pkg/logger"

	"go.uber.org/zap"
)

// Delivery 一次付款投遞。Attempt 從 1 開始，每次重新投遞加 1
type Delivery struct {
	Data    *model.PaymentRequest
	Attempt int
	Ack     func()
	// Nack(true) 稍後重新投遞；Nack(false) 放棄此付款 (Redis 版本轉入 dead-letter stream)
	Nack func(requeue bool)
}

type PaymentQueue interface {
	// 發送付款請求到隊列
	PublishPayment(ctx context.Context, payment *model.PaymentRequest) error
	// 訂閱付款隊列；ctx 結束且所有投遞 goroutine 退出後關閉 channel
	SubscribePayments(ctx context.Context) (<-chan Delivery, error)
}

type pendingPayment struct {
	payment *model.PaymentRequest
	attempt int
}

type MemoryPaymentQueueImpl struct {
	// 使用 Go channel 模擬 MQ 隊列
	ch chan pendingPayment
}

func NewMemoryPaymentQueue(bufferSize int) PaymentQueue {
	return &MemoryPaymentQueueImpl{
		ch: make(chan pendingPayment, bufferSize),
	}
}

func (q *MemoryPaymentQueueImpl) PublishPayment(ctx context.Context, payment *model.PaymentRequest) error {
	select {
	case q.ch <- pendingPayment{payment: payment, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryPaymentQueueImpl) SubscribePayments(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case p := <-q.ch:
				select {
				case out <- q.newDelivery(p):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (q *MemoryPaymentQueueImpl) newDelivery(p pendingPayment) Delivery {
	return Delivery{
		Data:    p.payment,
		Attempt: p.attempt,
		Ack:     func() {},
		Nack: func(requeue bool) {
			log := logger.WithComponent("mq").With(zap.String("request_id", p.payment.RequestID), zap.Int("attempt", p.attempt))
			if !requeue {
				log.Warn("payment dropped from memory queue")
				return
			}
			select {
			case q.ch <- pendingPayment{payment: p.payment, attempt: p.attempt + 1}:
			default:
				log.Warn("memory queue full, payment dropped on requeue")
			}
		},
	}
}

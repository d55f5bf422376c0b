package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"cinema-tickets/internal/model"
	"cinema-tickets/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey           = "payments:stream"
	DeadLetterStreamKey = "payments:dead"
	ConsumerGroupName   = "payment-settlement"
	ConsumerNamePrefix  = "settler"

	fieldPayment    = "payment"
	fieldRequestID  = "request_id"
	fieldSourceID   = "source_id"
	fieldReason     = "reason"
	fieldDeliveries = "deliveries"
)

// dead-letter 原因
const (
	ReasonRejected      = "rejected"
	ReasonMaxDeliveries = "max deliveries exceeded"
	ReasonMalformed     = "malformed payload"
)

// RedisStreamPaymentQueueConfig 零值欄位使用預設
type RedisStreamPaymentQueueConfig struct {
	RedeliverAfter time.Duration // 未 ack 的付款閒置超過此時間後重新投遞
	MaxDeliveries  int           // 超過投遞次數上限的付款轉入 dead-letter stream
	BlockTime      time.Duration // XReadGroup 阻塞時間
	BatchSize      int64
}

func (c *RedisStreamPaymentQueueConfig) withDefaults() RedisStreamPaymentQueueConfig {
	cfg := RedisStreamPaymentQueueConfig{
		RedeliverAfter: 5 * time.Second,
		MaxDeliveries:  5,
		BlockTime:      2 * time.Second,
		BatchSize:      10,
	}
	if c == nil {
		return cfg
	}
	if c.RedeliverAfter > 0 {
		cfg.RedeliverAfter = c.RedeliverAfter
	}
	if c.MaxDeliveries > 0 {
		cfg.MaxDeliveries = c.MaxDeliveries
	}
	if c.BlockTime > 0 {
		cfg.BlockTime = c.BlockTime
	}
	if c.BatchSize > 0 {
		cfg.BatchSize = c.BatchSize
	}
	return cfg
}

// DeadLetter 無法結算、已從付款 stream 移除的付款
type DeadLetter struct {
	ID         string
	SourceID   string
	Reason     string
	Deliveries int
	Payment    *model.PaymentRequest // payload 無法解析時為 nil
}

type RedisStreamPaymentQueueImpl struct {
	client   *redis.Client
	consumer string
	cfg      RedisStreamPaymentQueueConfig
}

// NewRedisStreamPaymentQueue 建立 consumer group (已存在則沿用)；consumerID 為空時自動產生
func NewRedisStreamPaymentQueue(ctx context.Context, client *redis.Client, consumerID string, config *RedisStreamPaymentQueueConfig) (*RedisStreamPaymentQueueImpl, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}

	err := client.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	return &RedisStreamPaymentQueueImpl{
		client:   client,
		consumer: ConsumerNamePrefix + ":" + consumerID,
		cfg:      config.withDefaults(),
	}, nil
}

func (q *RedisStreamPaymentQueueImpl) PublishPayment(ctx context.Context, payment *model.PaymentRequest) error {
	body, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("marshal payment: %w", err)
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{
			fieldPayment:   string(body),
			fieldRequestID: payment.RequestID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd payment: %w", err)
	}
	return nil
}

func (q *RedisStreamPaymentQueueImpl) SubscribePayments(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		q.consumeNew(ctx, out)
	}()
	go func() {
		defer wg.Done()
		q.redeliverStale(ctx, out)
	}()
	// 兩個投遞 goroutine 都退出後才關閉，避免送到已關閉的 channel
	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}

// consumeNew 讀取尚未投遞過的付款 (">")
func (q *RedisStreamPaymentQueueImpl) consumeNew(ctx context.Context, out chan<- Delivery) {
	log := logger.WithComponent("mq")

	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroupName,
			Consumer: q.consumer,
			Streams:  []string{StreamKey, ">"},
			Count:    q.cfg.BatchSize,
			Block:    q.cfg.BlockTime,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("XReadGroup failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				if !q.dispatch(ctx, out, msg, 1) {
					return
				}
			}
		}
	}
}

// redeliverStale 以 XAUTOCLAIM 領回閒置過久的付款，超過投遞上限者轉入 dead-letter
func (q *RedisStreamPaymentQueueImpl) redeliverStale(ctx context.Context, out chan<- Delivery) {
	log := logger.WithComponent("mq")
	ticker := time.NewTicker(q.cfg.RedeliverAfter)
	defer ticker.Stop()

	cursor := "0-0"
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   StreamKey,
			Group:    ConsumerGroupName,
			Consumer: q.consumer,
			MinIdle:  q.cfg.RedeliverAfter,
			Start:    cursor,
			Count:    q.cfg.BatchSize,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() == nil {
				log.Error("XAutoClaim failed", zap.Error(err))
			}
			continue
		}
		cursor = next
		if cursor == "" {
			cursor = "0-0"
		}

		for _, msg := range claimed {
			deliveries, err := q.deliveryCount(ctx, msg.ID)
			if err != nil {
				log.Warn("read delivery count failed", zap.String("message_id", msg.ID), zap.Error(err))
				deliveries = 1
			}
			if deliveries > q.cfg.MaxDeliveries {
				q.deadLetter(ctx, msg, ReasonMaxDeliveries, deliveries)
				continue
			}
			if !q.dispatch(ctx, out, msg, deliveries) {
				return
			}
		}
	}
}

// deliveryCount XAUTOCLAIM 已把此次領取計入
func (q *RedisStreamPaymentQueueImpl) deliveryCount(ctx context.Context, messageID string) (int, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: StreamKey,
		Group:  ConsumerGroupName,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, fmt.Errorf("message %s not pending", messageID)
	}
	return int(pending[0].RetryCount), nil
}

// dispatch 解析並送出；ctx 結束時回傳 false
func (q *RedisStreamPaymentQueueImpl) dispatch(ctx context.Context, out chan<- Delivery, msg redis.XMessage, attempt int) bool {
	payment, err := decodePayment(msg)
	if err != nil {
		logger.WithComponent("mq").Warn("malformed payment message", zap.String("message_id", msg.ID), zap.Error(err))
		q.deadLetter(ctx, msg, ReasonMalformed, attempt)
		return true
	}

	select {
	case out <- q.newDelivery(ctx, msg, payment, attempt):
		return true
	case <-ctx.Done():
		return false
	}
}

func decodePayment(msg redis.XMessage) (*model.PaymentRequest, error) {
	raw, ok := msg.Values[fieldPayment].(string)
	if !ok {
		return nil, errors.New("missing payment field")
	}
	var payment model.PaymentRequest
	if err := json.Unmarshal([]byte(raw), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (q *RedisStreamPaymentQueueImpl) newDelivery(ctx context.Context, msg redis.XMessage, payment *model.PaymentRequest, attempt int) Delivery {
	log := logger.WithComponent("mq").With(zap.String("message_id", msg.ID), zap.String("request_id", payment.RequestID))
	// 關機時仍要完成 ack，否則已結算的付款會再被投遞
	ackCtx := context.WithoutCancel(ctx)

	return Delivery{
		Data:    payment,
		Attempt: attempt,
		Ack: func() {
			if err := q.client.XAck(ackCtx, StreamKey, ConsumerGroupName, msg.ID).Err(); err != nil {
				log.Error("XAck failed", zap.Error(err))
			}
		},
		Nack: func(requeue bool) {
			if requeue {
				// 留在 PEL，閒置 RedeliverAfter 後由 redeliverStale 領回
				log.Info("payment will be redelivered", zap.Int("attempt", attempt), zap.Duration("redeliver_after", q.cfg.RedeliverAfter))
				return
			}
			q.deadLetter(ackCtx, msg, ReasonRejected, attempt)
		},
	}
}

// deadLetter 在同一個 MULTI 中寫入 dead-letter stream 並 ack 原消息
func (q *RedisStreamPaymentQueueImpl) deadLetter(ctx context.Context, msg redis.XMessage, reason string, deliveries int) {
	raw, _ := msg.Values[fieldPayment].(string)

	pipe := q.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		Values: map[string]interface{}{
			fieldPayment:    raw,
			fieldSourceID:   msg.ID,
			fieldReason:     reason,
			fieldDeliveries: deliveries,
		},
	})
	pipe.XAck(ctx, StreamKey, ConsumerGroupName, msg.ID)

	log := logger.WithComponent("mq").With(zap.String("message_id", msg.ID), zap.String("reason", reason), zap.Int("deliveries", deliveries))
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("dead-letter payment failed", zap.Error(err))
		return
	}
	log.Warn("payment moved to dead-letter stream")
}

// DeadLetterCount dead-letter stream 中的付款數
func (q *RedisStreamPaymentQueueImpl) DeadLetterCount(ctx context.Context) (int64, error) {
	return q.client.XLen(ctx, DeadLetterStreamKey).Result()
}

// DeadLetters 由舊到新讀取最多 count 筆
func (q *RedisStreamPaymentQueueImpl) DeadLetters(ctx context.Context, count int64) ([]DeadLetter, error) {
	msgs, err := q.client.XRangeN(ctx, DeadLetterStreamKey, "-", "+", count).Result()
	if err != nil {
		return nil, err
	}

	letters := make([]DeadLetter, 0, len(msgs))
	for _, msg := range msgs {
		letter := DeadLetter{ID: msg.ID}
		letter.SourceID, _ = msg.Values[fieldSourceID].(string)
		letter.Reason, _ = msg.Values[fieldReason].(string)
		if s, ok := msg.Values[fieldDeliveries].(string); ok {
			letter.Deliveries, _ = strconv.Atoi(s)
		}
		if payment, err := decodePayment(msg); err == nil {
			letter.Payment = payment
		}
		letters = append(letters, letter)
	}
	return letters, nil
}

package queue_test

import (
	"context"
	"testing"
	"time"

	"cinema-tickets/internal/model"
	"cinema-tickets/internal/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan queue.Delivery) queue.Delivery {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "delivery channel closed")
		return d
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for payment delivery")
		return queue.Delivery{}
	}
}

func TestMemoryPaymentQueue(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := queue.NewMemoryPaymentQueue(10)
	deliveries, err := q.SubscribePayments(ctx)
	require.NoError(t, err)

	payment := &model.PaymentRequest{RequestID: "req-1", AccountID: 1, Amount: 95}
	require.NoError(t, q.PublishPayment(ctx, payment))

	d := receive(t, deliveries)
	assert.Equal(t, payment, d.Data)
	assert.Equal(t, 1, d.Attempt)

	// nack(requeue) 會再投遞一次
	d.Nack(true)
	again := receive(t, deliveries)
	assert.Equal(t, "req-1", again.Data.RequestID)
	assert.Equal(t, 2, again.Attempt)
	again.Ack()
}

func TestMemoryPaymentQueue_PublishCanceled(t *testing.T) {
	q := queue.NewMemoryPaymentQueue(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.PublishPayment(ctx, &model.PaymentRequest{RequestID: "req-1"})
	assert.ErrorIs(t, err, context.Canceled)
}

type streamFixture struct {
	server *miniredis.Miniredis
	client *redis.Client
}

func setupStream(t *testing.T) *streamFixture {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return &streamFixture{server: s, client: rdb}
}

func (f *streamFixture) newQueue(t *testing.T, ctx context.Context, cfg *queue.RedisStreamPaymentQueueConfig) *queue.RedisStreamPaymentQueueImpl {
	t.Helper()
	q, err := queue.NewRedisStreamPaymentQueue(ctx, f.client, "test", cfg)
	require.NoError(t, err)
	return q
}

func (f *streamFixture) pendingCount(t *testing.T, ctx context.Context) int64 {
	t.Helper()
	pending, err := f.client.XPending(ctx, queue.StreamKey, queue.ConsumerGroupName).Result()
	require.NoError(t, err)
	return pending.Count
}

func fastRedelivery(maxDeliveries int) *queue.RedisStreamPaymentQueueConfig {
	return &queue.RedisStreamPaymentQueueConfig{
		RedeliverAfter: 20 * time.Millisecond,
		MaxDeliveries:  maxDeliveries,
		BlockTime:      20 * time.Millisecond,
	}
}

func TestRedisStreamPaymentQueue(t *testing.T) {
	f := setupStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := f.newQueue(t, ctx, &queue.RedisStreamPaymentQueueConfig{BlockTime: 100 * time.Millisecond})

	// 重複建立 consumer group 不應報錯
	_, err := queue.NewRedisStreamPaymentQueue(ctx, f.client, "test-2", nil)
	require.NoError(t, err)

	payment := &model.PaymentRequest{RequestID: "req-42", AccountID: 7, Amount: 50}
	require.NoError(t, q.PublishPayment(ctx, payment))

	deliveries, err := q.SubscribePayments(ctx)
	require.NoError(t, err)

	d := receive(t, deliveries)
	assert.Equal(t, "req-42", d.Data.RequestID)
	assert.Equal(t, int64(7), d.Data.AccountID)
	assert.Equal(t, int64(50), d.Data.Amount)
	assert.Equal(t, 1, d.Attempt)

	d.Ack()

	assert.Equal(t, int64(0), f.pendingCount(t, ctx))
}

func TestRedisStreamPaymentQueue_RedeliverAfterNack(t *testing.T) {
	f := setupStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := f.newQueue(t, ctx, fastRedelivery(3))
	require.NoError(t, q.PublishPayment(ctx, &model.PaymentRequest{RequestID: "req-retry", AccountID: 1, Amount: 25}))

	deliveries, err := q.SubscribePayments(ctx)
	require.NoError(t, err)

	first := receive(t, deliveries)
	assert.Equal(t, 1, first.Attempt)
	first.Nack(true)

	second := receive(t, deliveries)
	assert.Equal(t, "req-retry", second.Data.RequestID)
	assert.Equal(t, 2, second.Attempt)
	second.Ack()

	assert.Equal(t, int64(0), f.pendingCount(t, ctx))

	count, err := q.DeadLetterCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRedisStreamPaymentQueue_DeadLetterAfterMaxDeliveries(t *testing.T) {
	f := setupStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := f.newQueue(t, ctx, fastRedelivery(2))
	require.NoError(t, q.PublishPayment(ctx, &model.PaymentRequest{RequestID: "req-poison", AccountID: 3, Amount: 40}))

	deliveries, err := q.SubscribePayments(ctx)
	require.NoError(t, err)

	receive(t, deliveries).Nack(true)
	receive(t, deliveries).Nack(true)

	require.Eventually(t, func() bool {
		n, err := q.DeadLetterCount(ctx)
		return err == nil && n == 1
	}, 3*time.Second, 10*time.Millisecond)

	letters, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, queue.ReasonMaxDeliveries, letters[0].Reason)
	assert.Equal(t, 3, letters[0].Deliveries)
	require.NotNil(t, letters[0].Payment)
	assert.Equal(t, "req-poison", letters[0].Payment.RequestID)

	assert.Equal(t, int64(0), f.pendingCount(t, ctx))
}

func TestRedisStreamPaymentQueue_RejectMovesToDeadLetter(t *testing.T) {
	f := setupStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := f.newQueue(t, ctx, &queue.RedisStreamPaymentQueueConfig{BlockTime: 20 * time.Millisecond})
	require.NoError(t, q.PublishPayment(ctx, &model.PaymentRequest{RequestID: "req-bad", AccountID: 0, Amount: 10}))

	deliveries, err := q.SubscribePayments(ctx)
	require.NoError(t, err)

	d := receive(t, deliveries)
	d.Nack(false)

	letters, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, queue.ReasonRejected, letters[0].Reason)
	assert.Equal(t, 1, letters[0].Deliveries)
	assert.Equal(t, "req-bad", letters[0].Payment.RequestID)
	assert.NotEmpty(t, letters[0].SourceID)

	assert.Equal(t, int64(0), f.pendingCount(t, ctx))
}

func TestRedisStreamPaymentQueue_MalformedMessage(t *testing.T) {
	f := setupStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := f.newQueue(t, ctx, &queue.RedisStreamPaymentQueueConfig{BlockTime: 20 * time.Millisecond})
	require.NoError(t, f.client.XAdd(ctx, &redis.XAddArgs{
		Stream: queue.StreamKey,
		Values: map[string]interface{}{"payment": "{not json"},
	}).Err())
	require.NoError(t, q.PublishPayment(ctx, &model.PaymentRequest{RequestID: "req-ok", AccountID: 1, Amount: 25}))

	deliveries, err := q.SubscribePayments(ctx)
	require.NoError(t, err)

	d := receive(t, deliveries)
	assert.Equal(t, "req-ok", d.Data.RequestID)
	d.Ack()

	letters, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, queue.ReasonMalformed, letters[0].Reason)
	assert.Nil(t, letters[0].Payment)
}

// 關閉時仍有待重新投遞的付款，channel 只能在所有投遞 goroutine 退出後關閉
func TestRedisStreamPaymentQueue_ShutdownWithPendingRedeliveries(t *testing.T) {
	f := setupStream(t)

	for i := 0; i < 20; i++ {
		f.server.FlushAll()

		ctx, cancel := context.WithCancel(context.Background())
		q := f.newQueue(t, ctx, &queue.RedisStreamPaymentQueueConfig{
			RedeliverAfter: time.Millisecond,
			MaxDeliveries:  1000,
			BlockTime:      10 * time.Millisecond,
		})
		for n := 0; n < 20; n++ {
			require.NoError(t, q.PublishPayment(ctx, &model.PaymentRequest{RequestID: "req", AccountID: 1, Amount: 1}))
		}

		deliveries, err := q.SubscribePayments(ctx)
		require.NoError(t, err)

		// 不 ack，讓 redeliverStale 持續領回
		for n := 0; n < 30; n++ {
			receive(t, deliveries)
		}
		cancel()

		closed := make(chan struct{})
		go func() {
			for range deliveries {
			}
			close(closed)
		}()
		select {
		case <-closed:
		case <-time.After(3 * time.Second):
			t.Fatal("delivery channel not closed after cancel")
		}
	}
}

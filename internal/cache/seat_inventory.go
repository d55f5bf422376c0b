package cache

import (
	"context"
	"errors"
	"fmt"

	apperrors "cinema-tickets/pkg/app_errors"
	"cinema-tickets/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisSeatInventoryManager interface {
	// 預熱：設定影廳可售座位數
	WarmUpInventory(ctx context.Context, capacity int) error
	// 獲取：剩餘座位數
	GetRemaining(ctx context.Context) (int, error)
	// 獲取：帳號已預約座位數
	GetReserved(ctx context.Context, accountID int64) (int, error)
	// 預約：扣減座位並記錄帳號預約數 (Lua腳本確保原子性)
	ReserveSeat(ctx context.Context, accountID int64, seats int) error
}

type RedisSeatInventoryManagerImpl struct {
	client   *redis.Client
	screenID int
}

func NewRedisSeatInventoryManager(client *redis.Client, screenID int) RedisSeatInventoryManager {
	return &RedisSeatInventoryManagerImpl{
		client:   client,
		screenID: screenID,
	}
}

// 座位庫存 key
func (m *RedisSeatInventoryManagerImpl) getSeatsKey() string {
	return fmt.Sprintf("screen:%d:seats", m.screenID)
}

// 帳號預約紀錄 key
func (m *RedisSeatInventoryManagerImpl) getAccountsKey() string {
	return fmt.Sprintf("screen:%d:accounts", m.screenID)
}

func (m *RedisSeatInventoryManagerImpl) WarmUpInventory(ctx context.Context, capacity int) error {
	return m.client.HSet(ctx, m.getSeatsKey(), map[string]interface{}{
		"capacity":  capacity,
		"remaining": capacity,
	}).Err()
}

func (m *RedisSeatInventoryManagerImpl) GetRemaining(ctx context.Context) (int, error) {
	val, err := m.client.HGet(ctx, m.getSeatsKey(), "remaining").Int()
	if errors.Is(err, redis.Nil) {
		return 0, apperrors.ErrSeatInventoryNotFound
	}
	return val, err
}

func (m *RedisSeatInventoryManagerImpl) GetReserved(ctx context.Context, accountID int64) (int, error) {
	val, err := m.client.HGet(ctx, m.getAccountsKey(), fmt.Sprint(accountID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return val, err
}

var reserveSeatScript = redis.NewScript(`
	local seats_key = KEYS[1]
	local accounts_key = KEYS[2]
	local account_id = ARGV[1]
	local request_seats = tonumber(ARGV[2])

	-- 庫存未預熱
	local remaining = redis.call('HGET', seats_key, 'remaining')
	if not remaining then
		return -2
	end

	-- 座位不足
	if tonumber(remaining) < request_seats then
		return -1
	end

	redis.call('HINCRBY', seats_key, 'remaining', -request_seats)
	redis.call('HINCRBY', accounts_key, account_id, request_seats)
	return 1
`)

// ReserveSeat 實作 SeatReservationService。seats 為 0 時不改變庫存
func (m *RedisSeatInventoryManagerImpl) ReserveSeat(ctx context.Context, accountID int64, seats int) error {
	if seats < 0 {
		return fmt.Errorf("reserve seat: negative seat count %d", seats)
	}
	if seats == 0 {
		return nil
	}

	code, err := reserveSeatScript.Run(ctx, m.client, []string{m.getSeatsKey(), m.getAccountsKey()}, accountID, seats).Int()
	if err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}

	switch code {
	case 1:
		logger.WithComponent("cache").Debug("seats reserved",
			zap.Int("screen_id", m.screenID), zap.Int64("account_id", accountID), zap.Int("seats", seats))
		return nil
	case -1:
		return apperrors.ErrInsufficientSeats
	case -2:
		return apperrors.ErrSeatInventoryNotFound
	default:
		return fmt.Errorf("reserve seat: unexpected result %d", code)
	}
}

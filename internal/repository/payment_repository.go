package repository

import (
	"context"
	"errors"
	"time"

	"cinema-tickets/internal/model"
	apperrors "cinema-tickets/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX *pgxpool.Pool 與 pgx.Tx 共同的查詢介面
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createPaymentsTable = `
	CREATE TABLE IF NOT EXISTS payments (
		id          SERIAL PRIMARY KEY,
		request_id  TEXT NOT NULL UNIQUE,
		account_id  BIGINT NOT NULL CHECK (account_id > 0),
		amount      BIGINT NOT NULL CHECK (amount >= 0),
		status      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		settled_at  TIMESTAMPTZ
	)
`

type PaymentRepository interface {
	EnsureSchema(ctx context.Context) error
	// 結算付款；同一 request_id 重複投遞時回傳 false
	Settle(ctx context.Context, req *model.PaymentRequest, settledAt time.Time) (bool, error)
	FindByRequestID(ctx context.Context, requestID string) (*model.Payment, error)
}

type PaymentRepositoryImpl struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createPaymentsTable)
	return err
}

func (r *PaymentRepositoryImpl) Settle(ctx context.Context, req *model.PaymentRequest, settledAt time.Time) (bool, error) {
	query := `
		INSERT INTO payments (request_id, account_id, amount, status, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (request_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query,
		req.RequestID, req.AccountID, req.Amount, string(model.PaymentStatusSettled), req.CreatedAt, settledAt,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *PaymentRepositoryImpl) FindByRequestID(ctx context.Context, requestID string) (*model.Payment, error) {
	query := `
		SELECT id, request_id, account_id, amount, status, created_at, settled_at
		FROM payments
		WHERE request_id = $1
	`

	var payment model.Payment
	var status string
	err := r.db.QueryRow(ctx, query, requestID).Scan(
		&payment.ID,
		&payment.RequestID,
		&payment.AccountID,
		&payment.Amount,
		&status,
		&payment.CreatedAt,
		&payment.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	payment.Status = model.PaymentStatus(status)

	return &payment, nil
}

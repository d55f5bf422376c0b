package model

import "time"

// PaymentStatus 付款結算狀態
type PaymentStatus string

// 結算紀錄只在成功後寫入
const PaymentStatusSettled PaymentStatus = "settled"

// PaymentRequest 送往付款佇列的付款請求
type PaymentRequest struct {
	RequestID string    `json:"request_id"`
	AccountID int64     `json:"account_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Payment 付款結算紀錄 (payments table)
type Payment struct {
	ID        int           `json:"id" db:"id"`
	RequestID string        `json:"request_id" db:"request_id"`
	AccountID int64         `json:"account_id" db:"account_id"`
	Amount    int64         `json:"amount" db:"amount"`
	Status    PaymentStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	SettledAt *time.Time    `json:"settled_at,omitempty" db:"settled_at"`
}

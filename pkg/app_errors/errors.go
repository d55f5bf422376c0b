package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAccount        = errors.New("invalid account ID")
	ErrInvalidPurchase       = errors.New("invalid purchase")
	ErrInvalidConfig         = errors.New("invalid ticket service configuration")
	ErrUnknownTicketType     = errors.New("unknown ticket type")
	ErrInsufficientSeats     = errors.New("insufficient seats")
	ErrSeatInventoryNotFound = errors.New("seat inventory not found")
	ErrPaymentNotFound       = errors.New("payment not found")
)

// AccountError 帳號不合法 (accountID <= 0)，屬於呼叫端錯誤
type AccountError struct {
	AccountID int64
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("invalid account ID: %d", e.AccountID)
}

func (e *AccountError) Is(target error) bool {
	return target == ErrInvalidAccount
}

// InvalidPurchaseError 違反購票規則，Reason 帶有具體數量方便排查
type InvalidPurchaseError struct {
	Reason string
}

func NewInvalidPurchase(format string, args ...any) *InvalidPurchaseError {
	return &InvalidPurchaseError{Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidPurchaseError) Error() string {
	return e.Reason
}

func (e *InvalidPurchaseError) Is(target error) bool {
	return target == ErrInvalidPurchase
}

// ConfigError 設定檔讀取或解析失敗
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", ErrInvalidConfig, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrInvalidConfig, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

package model

import (
	"fmt"

	apperrors "cinema-tickets/pkg/app_errors"
)

// TicketType 票種，只允許 ADULT、CHILD、INFANT 三種
type TicketType int

const (
	TicketTypeAdult TicketType = iota + 1
	TicketTypeChild
	TicketTypeInfant
)

var ticketTypeNames = map[TicketType]string{
	TicketTypeAdult:  "ADULT",
	TicketTypeChild:  "CHILD",
	TicketTypeInfant: "INFANT",
}

// TicketTypes 回傳固定順序的票種 (ADULT, CHILD, INFANT)，驗證與收據都依此順序
func TicketTypes() []TicketType {
	return []TicketType{TicketTypeAdult, TicketTypeChild, TicketTypeInfant}
}

// IsValid 驗證票種是否有效
func (t TicketType) IsValid() bool {
	_, ok := ticketTypeNames[t]
	return ok
}

func (t TicketType) String() string {
	if name, ok := ticketTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TicketType(%d)", int(t))
}

// ParseTicketType 將 "ADULT" 等名稱轉為 TicketType
func ParseTicketType(name string) (TicketType, error) {
	for t, n := range ticketTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownTicketType, name)
}

func (t TicketType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrUnknownTicketType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *TicketType) UnmarshalText(text []byte) error {
	parsed, err := ParseTicketType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TicketTypeRequest 單一購票項目 (票種 + 數量)。建立時不做驗證，數量可為負數，由購票規則判斷
type TicketTypeRequest struct {
	ticketType TicketType
	quantity   int
}

func NewTicketTypeRequest(ticketType TicketType, quantity int) TicketTypeRequest {
	return TicketTypeRequest{ticketType: ticketType, quantity: quantity}
}

func (r TicketTypeRequest) TicketType() TicketType {
	return r.ticketType
}

func (r TicketTypeRequest) Quantity() int {
	return r.quantity
}

// PurchaseSummary 一次購票的彙總結果
type PurchaseSummary struct {
	Adult        int   `json:"adult"`
	Child        int   `json:"child"`
	Infant       int   `json:"infant"`
	TotalTickets int   `json:"total_tickets"`
	TotalCost    int64 `json:"total_cost"`
	TotalSeats   int   `json:"total_seats"`
}

// Quantity 回傳指定票種的總數量
func (s PurchaseSummary) Quantity(t TicketType) int {
	switch t {
	case TicketTypeAdult:
		return s.Adult
	case TicketTypeChild:
		return s.Child
	case TicketTypeInfant:
		return s.Infant
	}
	return 0
}

// PurchaseItem HTTP 購票項目
type PurchaseItem struct {
	Type     TicketType `json:"type" binding:"required"`
	Quantity int        `json:"quantity"`
}

// PurchaseRequest HTTP 購票請求。account_id 不做 binding 檢查，由 service 判斷並回傳 AccountError
type PurchaseRequest struct {
	AccountID int64          `json:"account_id"`
	Tickets   []PurchaseItem `json:"tickets" binding:"dive"`
}

// TicketTypeRequests 轉為 service 使用的購票項目
func (r PurchaseRequest) TicketTypeRequests() []TicketTypeRequest {
	requests := make([]TicketTypeRequest, 0, len(r.Tickets))
	for _, item := range r.Tickets {
		requests = append(requests, NewTicketTypeRequest(item.Type, item.Quantity))
	}
	return requests
}

// PurchaseResponse HTTP 購票響應
type PurchaseResponse struct {
	AccountID int64           `json:"account_id"`
	Summary   PurchaseSummary `json:"summary"`
}

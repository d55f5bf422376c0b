package service

import "context"

// TicketPaymentService 外部付款服務
type TicketPaymentService interface {
	MakePayment(ctx context.Context, accountID int64, amount int64) error
}

// SeatReservationService 外部座位預約服務
type SeatReservationService interface {
	ReserveSeat(ctx context.Context, accountID int64, seats int) error
}

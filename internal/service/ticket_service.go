package service

import (
	"context"
	"io"
	"os"

	"cinema-tickets/internal/model"
	"cinema-tickets/internal/pricing"
	apperrors "cinema-tickets/pkg/app_errors"
	"cinema-tickets/pkg/logger"

	"go.uber.org/zap"
)

type TicketService interface {
	// 驗證購票並依序呼叫付款、座位預約
	PurchaseTickets(ctx context.Context, accountID int64, requests ...model.TicketTypeRequest) (model.PurchaseSummary, error)
	// 輸出購票摘要 (不驗證購票規則，不呼叫外部服務)
	PrintTicketsPurchase(ctx context.Context, accountID int64, requests ...model.TicketTypeRequest) error
	// 以此服務的票價設定輸出已完成購票的收據
	RenderReceipt(w io.Writer, accountID int64, summary model.PurchaseSummary) error
}

type TicketServiceImpl struct {
	paymentService     TicketPaymentService
	reservationService SeatReservationService
	config             *pricing.PriceConfig
	out                io.Writer
}

type TicketServiceOption func(*TicketServiceImpl)

// WithPriceConfig 使用指定的票價設定，未指定時使用 pricing.DefaultConfig()
func WithPriceConfig(cfg *pricing.PriceConfig) TicketServiceOption {
	return func(s *TicketServiceImpl) {
		s.config = cfg
	}
}

// WithOutput 收據輸出位置，預設為 os.Stdout
func WithOutput(w io.Writer) TicketServiceOption {
	return func(s *TicketServiceImpl) {
		s.out = w
	}
}

func NewTicketService(
	paymentService TicketPaymentService,
	reservationService SeatReservationService,
	opts ...TicketServiceOption,
) TicketService {
	s := &TicketServiceImpl{
		paymentService:     paymentService,
		reservationService: reservationService,
		config:             pricing.DefaultConfig(),
		out:                os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TicketServiceImpl) PurchaseTickets(ctx context.Context, accountID int64, requests ...model.TicketTypeRequest) (model.PurchaseSummary, error) {
	log := logger.WithComponent("service").With(zap.Int64("account_id", accountID))

	// 1. 帳號檢查
	if accountID <= 0 {
		log.Warn("rejected purchase: invalid account")
		return model.PurchaseSummary{}, &apperrors.AccountError{AccountID: accountID}
	}

	// 2. 彙總數量、金額、座位
	summary, err := pricing.Summarize(s.config, requests)
	if err != nil {
		log.Warn("rejected purchase", zap.Error(err))
		return model.PurchaseSummary{}, err
	}

	// 3. 購票規則
	if err := ValidatePurchase(summary, s.config.PurchaseLimit()); err != nil {
		log.Warn("rejected purchase", zap.Error(err))
		return model.PurchaseSummary{}, err
	}

	// 4. 付款失敗則不預約座位
	if err := s.paymentService.MakePayment(ctx, accountID, summary.TotalCost); err != nil {
		log.Error("payment failed", zap.Int64("amount", summary.TotalCost), zap.Error(err))
		return model.PurchaseSummary{}, err
	}

	// 5. 付款成功後預約座位；預約失敗不退款
	if err := s.reservationService.ReserveSeat(ctx, accountID, summary.TotalSeats); err != nil {
		log.Error("seat reservation failed after payment", zap.Int("seats", summary.TotalSeats), zap.Error(err))
		return model.PurchaseSummary{}, err
	}

	log.Info("tickets purchased",
		zap.Int("tickets", summary.TotalTickets),
		zap.Int64("amount", summary.TotalCost),
		zap.Int("seats", summary.TotalSeats),
	)

	return summary, nil
}

func (s *TicketServiceImpl) PrintTicketsPurchase(ctx context.Context, accountID int64, requests ...model.TicketTypeRequest) error {
	if accountID <= 0 {
		return &apperrors.AccountError{AccountID: accountID}
	}

	summary, err := pricing.Summarize(s.config, requests)
	if err != nil {
		return err
	}

	return WriteReceipt(s.out, accountID, s.config, summary)
}

func (s *TicketServiceImpl) RenderReceipt(w io.Writer, accountID int64, summary model.PurchaseSummary) error {
	return WriteReceipt(w, accountID, s.config, summary)
}

package pricing

import (
	"fmt"

	"cinema-tickets/internal/model"
	apperrors "cinema-tickets/pkg/app_errors"
)

// Summarize 彙總購票項目：各票種數量、總張數、總金額與座位數。
// 嬰兒票不佔座位也不計費，不論設定的單價為何。
func Summarize(cfg *PriceConfig, requests []model.TicketTypeRequest) (model.PurchaseSummary, error) {
	var summary model.PurchaseSummary

	for _, req := range requests {
		quantity := req.Quantity()

		switch req.TicketType() {
		case model.TicketTypeAdult:
			summary.Adult += quantity
		case model.TicketTypeChild:
			summary.Child += quantity
		case model.TicketTypeInfant:
			summary.Infant += quantity
		default:
			return model.PurchaseSummary{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownTicketType, req.TicketType())
		}

		summary.TotalTickets += quantity
	}

	summary.TotalCost = int64(summary.Adult)*cfg.Price(model.TicketTypeAdult) +
		int64(summary.Child)*cfg.Price(model.TicketTypeChild)
	summary.TotalSeats = summary.Adult + summary.Child

	return summary, nil
}

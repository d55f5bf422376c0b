package service

import (
	"strings"

	"cinema-tickets/internal/model"
	apperrors "cinema-tickets/pkg/app_errors"
)

// ValidatePurchase 依序檢查購票規則，回傳第一個不符合的規則：
//  1. 總張數不可為負
//  2. 總張數不可超過上限
//  3. 各票種數量不可為負 (ADULT, CHILD, INFANT)
//  4. 兒童或嬰兒票必須搭配至少一張成人票
func ValidatePurchase(summary model.PurchaseSummary, purchaseLimit int) error {
	if summary.TotalTickets < 0 {
		return apperrors.NewInvalidPurchase("purchase tickets (%d) cannot be less than 0 tickets", summary.TotalTickets)
	}

	if summary.TotalTickets > purchaseLimit {
		return apperrors.NewInvalidPurchase("purchase tickets (%d) cannot be more than (%d) tickets", summary.TotalTickets, purchaseLimit)
	}

	for _, t := range model.TicketTypes() {
		if n := summary.Quantity(t); n < 0 {
			return apperrors.NewInvalidPurchase("purchase %s tickets (%d) cannot be less than 0 tickets", strings.ToLower(t.String()), n)
		}
	}

	if (summary.Child > 0 || summary.Infant > 0) && summary.Adult <= 0 {
		return apperrors.NewInvalidPurchase("child tickets (%d) or infant tickets (%d) cannot be purchased without any adult ticket (%d)",
			summary.Child, summary.Infant, summary.Adult)
	}

	return nil
}

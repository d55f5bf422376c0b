package service

import (
	"bufio"
	"fmt"
	"io"

	"cinema-tickets/internal/model"
	"cinema-tickets/internal/pricing"
)

// WriteReceipt 輸出購票摘要。嬰兒票單價照常顯示，但不計入總金額
func WriteReceipt(w io.Writer, accountID int64, cfg *pricing.PriceConfig, summary model.PurchaseSummary) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Ticket Purchase Summary:")
	fmt.Fprintf(bw, "Account ID: [%d]\n", accountID)
	fmt.Fprintf(bw, "Total Tickets: %d\n", summary.TotalTickets)
	for _, t := range model.TicketTypes() {
		fmt.Fprintf(bw, "Ticket Type: %s, Quantity: %d, Price per ticket: £%d\n", t, summary.Quantity(t), cfg.Price(t))
	}
	fmt.Fprintf(bw, "Total Seats Reserved: %d\n", summary.TotalSeats)
	fmt.Fprintf(bw, "Total Cost: £%d\n", summary.TotalCost)

	return bw.Flush()
}

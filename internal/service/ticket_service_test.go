package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"cinema-tickets/internal/model"
	"cinema-tickets/internal/pricing"
	"cinema-tickets/internal/service"
	"cinema-tickets/internal/service/mocks"
	apperrors "cinema-tickets/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func adult(q int) model.TicketTypeRequest  { return model.NewTicketTypeRequest(model.TicketTypeAdult, q) }
func child(q int) model.TicketTypeRequest  { return model.NewTicketTypeRequest(model.TicketTypeChild, q) }
func infant(q int) model.TicketTypeRequest { return model.NewTicketTypeRequest(model.TicketTypeInfant, q) }

func setupMock(t *testing.T) (*mocks.MockTicketPaymentService, *mocks.MockSeatReservationService) {
	return mocks.NewMockTicketPaymentService(t), mocks.NewMockSeatReservationService(t)
}

func TestTicketService_PurchaseTickets(t *testing.T) {
	ctx := context.Background()

	successCases := []struct {
		name      string
		accountID int64
		requests  []model.TicketTypeRequest
		wantCost  int64
		wantSeats int
	}{
		{"adult, child and infant", 1, []model.TicketTypeRequest{adult(2), child(3), infant(1)}, 95, 5},
		{"repeated adults with infants", 1, []model.TicketTypeRequest{adult(1), adult(1), infant(5)}, 50, 2},
		{"empty batch", 1, nil, 0, 0},
		{"exactly at purchase limit", 3, []model.TicketTypeRequest{adult(20), child(5)}, 575, 25},
	}

	for _, tt := range successCases {
		t.Run("Success - "+tt.name, func(t *testing.T) {
			payment, reservation := setupMock(t)
			ticketService := service.NewTicketService(payment, reservation)

			var calls []string
			payment.EXPECT().MakePayment(ctx, tt.accountID, tt.wantCost).
				Run(func(context.Context, int64, int64) { calls = append(calls, "payment") }).
				Return(nil).Once()
			reservation.EXPECT().ReserveSeat(ctx, tt.accountID, tt.wantSeats).
				Run(func(context.Context, int64, int) { calls = append(calls, "reservation") }).
				Return(nil).Once()

			summary, err := ticketService.PurchaseTickets(ctx, tt.accountID, tt.requests...)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, summary.TotalCost)
			assert.Equal(t, tt.wantSeats, summary.TotalSeats)
			assert.Equal(t, []string{"payment", "reservation"}, calls)
		})
	}

	rejectCases := []struct {
		name      string
		accountID int64
		requests  []model.TicketTypeRequest
		wantErr   error
		wantMsg   string
	}{
		{"child without adult", 1, []model.TicketTypeRequest{child(1)}, apperrors.ErrInvalidPurchase,
			"child tickets (1) or infant tickets (0) cannot be purchased without any adult ticket (0)"},
		{"infant without adult", 1, []model.TicketTypeRequest{infant(2)}, apperrors.ErrInvalidPurchase,
			"child tickets (0) or infant tickets (2) cannot be purchased without any adult ticket (0)"},
		{"over purchase limit", 1, []model.TicketTypeRequest{adult(26)}, apperrors.ErrInvalidPurchase,
			"purchase tickets (26) cannot be more than (25) tickets"},
		{"zero account", 0, []model.TicketTypeRequest{adult(1)}, apperrors.ErrInvalidAccount, "invalid account ID: 0"},
		{"negative account", -4, []model.TicketTypeRequest{adult(1)}, apperrors.ErrInvalidAccount, "invalid account ID: -4"},
		{"account checked before rules", 0, []model.TicketTypeRequest{adult(99)}, apperrors.ErrInvalidAccount, "invalid account ID: 0"},
		{"negative total", 1, []model.TicketTypeRequest{adult(-2)}, apperrors.ErrInvalidPurchase,
			"purchase tickets (-2) cannot be less than 0 tickets"},
		{"negative child with positive total", 1, []model.TicketTypeRequest{adult(3), child(-1)}, apperrors.ErrInvalidPurchase,
			"purchase child tickets (-1) cannot be less than 0 tickets"},
		{"unknown ticket type", 1, []model.TicketTypeRequest{model.NewTicketTypeRequest(model.TicketType(7), 1)},
			apperrors.ErrUnknownTicketType, ""},
	}

	for _, tt := range rejectCases {
		t.Run("Failed - "+tt.name, func(t *testing.T) {
			payment, reservation := setupMock(t)
			ticketService := service.NewTicketService(payment, reservation)

			_, err := ticketService.PurchaseTickets(ctx, tt.accountID, tt.requests...)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
			payment.AssertNotCalled(t, "MakePayment", mock.Anything, mock.Anything, mock.Anything)
			reservation.AssertNotCalled(t, "ReserveSeat", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("Failed - payment error skips reservation", func(t *testing.T) {
		payment, reservation := setupMock(t)
		ticketService := service.NewTicketService(payment, reservation)

		paymentErr := errors.New("card declined")
		payment.EXPECT().MakePayment(ctx, int64(1), int64(25)).Return(paymentErr).Once()

		_, err := ticketService.PurchaseTickets(ctx, 1, adult(1))

		assert.Same(t, paymentErr, err)
		reservation.AssertNotCalled(t, "ReserveSeat", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - reservation error is returned unchanged", func(t *testing.T) {
		payment, reservation := setupMock(t)
		ticketService := service.NewTicketService(payment, reservation)

		payment.EXPECT().MakePayment(ctx, int64(1), int64(25)).Return(nil).Once()
		reservation.EXPECT().ReserveSeat(ctx, int64(1), 1).Return(apperrors.ErrInsufficientSeats).Once()

		_, err := ticketService.PurchaseTickets(ctx, 1, adult(1))

		assert.Equal(t, apperrors.ErrInsufficientSeats, err)
	})

	t.Run("Success - custom price config", func(t *testing.T) {
		payment, reservation := setupMock(t)
		cfg, err := pricing.NewConfig(
			pricing.WithPrice(model.TicketTypeAdult, 10),
			pricing.WithPrice(model.TicketTypeChild, 5),
			pricing.WithPurchaseLimit(3),
		)
		require.NoError(t, err)
		ticketService := service.NewTicketService(payment, reservation, service.WithPriceConfig(cfg))

		payment.EXPECT().MakePayment(ctx, int64(9), int64(20)).Return(nil).Once()
		reservation.EXPECT().ReserveSeat(ctx, int64(9), 3).Return(nil).Once()

		_, err = ticketService.PurchaseTickets(ctx, 9, adult(1), child(2))
		require.NoError(t, err)

		_, err = ticketService.PurchaseTickets(ctx, 9, adult(4))
		assert.ErrorIs(t, err, apperrors.ErrInvalidPurchase)
	})
}

func TestTicketService_PurchaseTickets_Properties(t *testing.T) {
	ctx := context.Background()

	t.Run("Deterministic", func(t *testing.T) {
		payment, reservation := setupMock(t)
		ticketService := service.NewTicketService(payment, reservation)

		payment.EXPECT().MakePayment(ctx, int64(5), int64(65)).Return(nil).Times(3)
		reservation.EXPECT().ReserveSeat(ctx, int64(5), 3).Return(nil).Times(3)

		for i := 0; i < 3; i++ {
			summary, err := ticketService.PurchaseTickets(ctx, 5, adult(2), child(1), infant(2))
			require.NoError(t, err)
			assert.Equal(t, model.PurchaseSummary{Adult: 2, Child: 1, Infant: 2, TotalTickets: 5, TotalCost: 65, TotalSeats: 3}, summary)
		}
	})

	t.Run("Infants change neither cost nor seats", func(t *testing.T) {
		payment, reservation := setupMock(t)
		ticketService := service.NewTicketService(payment, reservation)

		payment.EXPECT().MakePayment(ctx, int64(1), int64(40)).Return(nil).Twice()
		reservation.EXPECT().ReserveSeat(ctx, int64(1), 2).Return(nil).Twice()

		without, err := ticketService.PurchaseTickets(ctx, 1, adult(1), child(1))
		require.NoError(t, err)
		with, err := ticketService.PurchaseTickets(ctx, 1, adult(1), infant(3), child(1))
		require.NoError(t, err)

		assert.Equal(t, without.TotalCost, with.TotalCost)
		assert.Equal(t, without.TotalSeats, with.TotalSeats)
	})

	t.Run("Split line items dispatch the same amounts", func(t *testing.T) {
		payment, reservation := setupMock(t)
		ticketService := service.NewTicketService(payment, reservation)

		payment.EXPECT().MakePayment(ctx, int64(2), int64(100)).Return(nil).Twice()
		reservation.EXPECT().ReserveSeat(ctx, int64(2), 4).Return(nil).Twice()

		_, err := ticketService.PurchaseTickets(ctx, 2, adult(4))
		require.NoError(t, err)
		_, err = ticketService.PurchaseTickets(ctx, 2, adult(1), adult(3))
		require.NoError(t, err)
	})
}

func TestTicketService_PrintTicketsPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		payment, reservation := setupMock(t)
		var out bytes.Buffer
		ticketService := service.NewTicketService(payment, reservation, service.WithOutput(&out))

		err := ticketService.PrintTicketsPurchase(ctx, 1, adult(2), child(3), infant(1))
		require.NoError(t, err)

		want := "Ticket Purchase Summary:\n" +
			"Account ID: [1]\n" +
			"Total Tickets: 6\n" +
			"Ticket Type: ADULT, Quantity: 2, Price per ticket: £25\n" +
			"Ticket Type: CHILD, Quantity: 3, Price per ticket: £15\n" +
			"Ticket Type: INFANT, Quantity: 1, Price per ticket: £0\n" +
			"Total Seats Reserved: 5\n" +
			"Total Cost: £95\n"
		assert.Equal(t, want, out.String())
	})

	t.Run("Success - business rules are not applied", func(t *testing.T) {
		payment, reservation := setupMock(t)
		var out bytes.Buffer
		ticketService := service.NewTicketService(payment, reservation, service.WithOutput(&out))

		err := ticketService.PrintTicketsPurchase(ctx, 3, child(30))
		require.NoError(t, err)

		assert.Contains(t, out.String(), "Total Tickets: 30\n")
		assert.Contains(t, out.String(), "Total Cost: £450\n")
		payment.AssertNotCalled(t, "MakePayment", mock.Anything, mock.Anything, mock.Anything)
		reservation.AssertNotCalled(t, "ReserveSeat", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success - infant price shown but not charged", func(t *testing.T) {
		payment, reservation := setupMock(t)
		cfg, err := pricing.NewConfig(pricing.WithPrice(model.TicketTypeInfant, 5))
		require.NoError(t, err)
		var out bytes.Buffer
		ticketService := service.NewTicketService(payment, reservation, service.WithPriceConfig(cfg), service.WithOutput(&out))

		require.NoError(t, ticketService.PrintTicketsPurchase(ctx, 1, adult(1), infant(2)))

		assert.Contains(t, out.String(), "Ticket Type: INFANT, Quantity: 2, Price per ticket: £5\n")
		assert.Contains(t, out.String(), "Total Cost: £25\n")
	})

	t.Run("Failed - invalid account", func(t *testing.T) {
		payment, reservation := setupMock(t)
		var out bytes.Buffer
		ticketService := service.NewTicketService(payment, reservation, service.WithOutput(&out))

		err := ticketService.PrintTicketsPurchase(ctx, 0, adult(1))

		assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)
		assert.Empty(t, out.String())
	})
}

func TestTicketService_RenderReceipt(t *testing.T) {
	ctx := context.Background()
	payment, reservation := setupMock(t)
	cfg, err := pricing.NewConfig(pricing.WithPrice(model.TicketTypeAdult, 30))
	require.NoError(t, err)
	var out bytes.Buffer
	ticketService := service.NewTicketService(payment, reservation, service.WithPriceConfig(cfg), service.WithOutput(&out))

	payment.EXPECT().MakePayment(mock.Anything, int64(4), int64(75)).Return(nil).Once()
	reservation.EXPECT().ReserveSeat(mock.Anything, int64(4), 3).Return(nil).Once()

	summary, err := ticketService.PurchaseTickets(ctx, 4, adult(2), child(1))
	require.NoError(t, err)

	// 收據單價必須與實際收費使用同一份設定
	var receipt bytes.Buffer
	require.NoError(t, ticketService.RenderReceipt(&receipt, 4, summary))

	assert.Contains(t, receipt.String(), "Ticket Type: ADULT, Quantity: 2, Price per ticket: £30\n")
	assert.Contains(t, receipt.String(), "Total Cost: £75\n")
	assert.Empty(t, out.String())
}

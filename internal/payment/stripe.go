package payment

import (
	"context"
	"fmt"
	"strconv"

	"cinema-tickets/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"go.uber.org/zap"
)

const DefaultCurrency = "gbp"

type paymentIntentCreator func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

// StripePaymentService 以 Stripe PaymentIntent 收款。票價以整數英鎊計，送出前轉為便士
type StripePaymentService struct {
	currency     string
	createIntent paymentIntentCreator
}

func NewStripePaymentService(currency string) *StripePaymentService {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &StripePaymentService{
		currency:     currency,
		createIntent: paymentintent.New,
	}
}

// toMinorUnits 英鎊 -> 便士
func toMinorUnits(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(decimal.NewFromInt(100)).IntPart()
}

func (s *StripePaymentService) MakePayment(ctx context.Context, accountID int64, amount int64) error {
	log := logger.WithComponent("payment").With(zap.Int64("account_id", accountID), zap.Int64("amount", amount))

	if amount < 0 {
		return fmt.Errorf("make payment: negative amount %d", amount)
	}
	// Stripe 不接受 0 元的 PaymentIntent
	if amount == 0 {
		log.Info("zero amount payment, skipping stripe")
		return nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(s.currency),
		Metadata: map[string]string{
			"account_id": strconv.FormatInt(accountID, 10),
		},
	}
	params.Context = ctx

	intent, err := s.createIntent(params)
	if err != nil {
		log.Error("stripe payment intent failed", zap.Error(err))
		return fmt.Errorf("stripe payment intent: %w", err)
	}

	log.Info("stripe payment intent created", zap.String("payment_intent_id", intent.ID))
	return nil
}

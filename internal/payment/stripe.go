package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"festival-tickets/internal/logger"
)

// InitStripe initializes the Stripe API with the secret key.
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// StripeGateway initiates payments through Stripe payment intents. It is the
// engine's only view of the payment provider; webhooks and settlement live
// in the payment service, not here.
type StripeGateway struct {
	Logger *logger.Logger
}

func NewStripeGateway(log *logger.Logger) *StripeGateway {
	return &StripeGateway{Logger: log}
}

// InitiatePayment creates a payment intent for the order and returns its
// client secret, which the frontend uses to drive the checkout. Creating an
// intent never advances order status; that happens only when payment is
// confirmed and MarkPaid runs.
func (g *StripeGateway) InitiatePayment(ctx context.Context, orderID string, amount int64, currency string) (string, error) {
	g.Logger.Info("PAYMENT", fmt.Sprintf("Creating payment intent for order %s (%d %s)", orderID, amount, currency))

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID)

	intent, err := paymentintent.New(params)
	if err != nil {
		g.Logger.Error("PAYMENT", fmt.Sprintf("Failed to create payment intent for order %s: %v", orderID, err))
		return "", fmt.Errorf("create payment intent for order %s: %w", orderID, err)
	}

	return intent.ClientSecret, nil
}

// CancelPayment abandons a previously created payment intent.
func (g *StripeGateway) CancelPayment(ctx context.Context, paymentIntentID string) error {
	g.Logger.Info("PAYMENT", fmt.Sprintf("Cancelling payment intent: %s", paymentIntentID))

	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	params.Context = ctx

	if _, err := paymentintent.Cancel(paymentIntentID, params); err != nil {
		g.Logger.Error("PAYMENT", fmt.Sprintf("Failed to cancel payment intent %s: %v", paymentIntentID, err))
		return fmt.Errorf("cancel payment intent %s: %w", paymentIntentID, err)
	}
	return nil
}

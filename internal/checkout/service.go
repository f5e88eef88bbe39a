package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"festival-tickets/internal/cart"
	"festival-tickets/internal/logger"
	"festival-tickets/internal/models"
	"festival-tickets/internal/promo"
)

// ErrEmptyCart rejects checkout attempts on carts with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// PromoStore is the promo-record boundary. FindPromo returns (nil, nil)
// when the code is unknown.
type PromoStore interface {
	FindPromo(ctx context.Context, code string) (*models.PromoCode, error)
	IncrementUsage(ctx context.Context, code string) error
}

// PaymentGateway initiates payment for the discounted total.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, orderID string, amount int64, currency string) (string, error)
}

// Service runs the retail checkout: totals from the session cart, promo
// validation, payment initiation, then post-commit promo usage and cart
// cleanup.
type Service struct {
	Carts    *cart.Service
	Promos   PromoStore
	Payments PaymentGateway
	logger   *logger.Logger
}

func NewService(carts *cart.Service, promos PromoStore, payments PaymentGateway, log *logger.Logger) *Service {
	return &Service{Carts: carts, Promos: promos, Payments: payments, logger: log}
}

// Summary is the priced view of a session's cart with an optional promo
// verdict applied.
type Summary struct {
	TotalItems  int          `json:"total_items"`
	TotalPrice  int64        `json:"total_price"`
	Promo       promo.Result `json:"promo"`
	FinalAmount int64        `json:"final_amount"`
}

// Preview prices the session's cart and, when a code is supplied, validates
// it against the current subtotal. Pure read: nothing is committed.
func (s *Service) Preview(ctx context.Context, sessionID, promoCode string) (*Summary, error) {
	c := s.Carts.Get(ctx, sessionID)

	summary := &Summary{
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
	summary.FinalAmount = summary.TotalPrice

	if promoCode != "" {
		record, err := s.Promos.FindPromo(ctx, promoCode)
		if err != nil {
			return nil, fmt.Errorf("look up promo %q: %w", promoCode, err)
		}
		summary.Promo = promo.Validate(promoCode, summary.TotalPrice, record, time.Now())
		if summary.Promo.Valid {
			summary.FinalAmount = summary.TotalPrice - summary.Promo.DiscountAmount
		}
	}
	return summary, nil
}

// Result is a committed retail checkout.
type Result struct {
	CheckoutID string  `json:"checkout_id"`
	Summary    Summary `json:"summary"`
	PaymentURL string  `json:"payment_url"`
}

// Checkout validates, initiates payment and commits. The promo usage counter
// is incremented only after payment initiation succeeded, and the cart is
// cleared last; a failure anywhere earlier leaves everything untouched and
// the whole call safe to retry.
func (s *Service) Checkout(ctx context.Context, sessionID, promoCode string) (*Result, error) {
	summary, err := s.Preview(ctx, sessionID, promoCode)
	if err != nil {
		return nil, err
	}
	if summary.TotalItems == 0 {
		return nil, ErrEmptyCart
	}

	checkoutID := uuid.NewString()
	paymentURL, err := s.Payments.InitiatePayment(ctx, checkoutID, summary.FinalAmount, "EUR")
	if err != nil {
		return nil, fmt.Errorf("checkout %s: initiate payment: %w", checkoutID, err)
	}

	if promoCode != "" && summary.Promo.Valid {
		if err := s.Promos.IncrementUsage(ctx, promoCode); err != nil {
			// The discount was already granted; a missed counter bump is
			// recoverable by ops, failing the sale here is not.
			s.logger.Error("PROMO", fmt.Sprintf("increment usage for %q: %v", promoCode, err))
		}
	}

	s.Carts.Clear(ctx, sessionID)
	s.logger.LogCart(sessionID, fmt.Sprintf("checkout %s committed: %d items, %d cents", checkoutID, summary.TotalItems, summary.FinalAmount))

	return &Result{CheckoutID: checkoutID, Summary: *summary, PaymentURL: paymentURL}, nil
}

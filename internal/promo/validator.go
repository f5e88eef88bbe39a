package promo

import (
	"strings"
	"time"

	"festival-tickets/internal/models"
)

// Reason explains why a promo code was rejected.
type Reason string

const (
	ReasonNotFound          Reason = "not_found"
	ReasonNotYetActive      Reason = "not_yet_active"
	ReasonExpired           Reason = "expired"
	ReasonUsageLimitReached Reason = "usage_limit_reached"
)

// Result is the verdict for one validation call. Invalid codes are a normal
// business outcome, not an error: Valid is false and Reason says why.
type Result struct {
	Valid           bool   `json:"valid"`
	Reason          Reason `json:"reason,omitempty"`
	DiscountPercent int    `json:"discount_percent,omitempty"`
	DiscountAmount  int64  `json:"discount_amount,omitempty"`
}

// Canonicalize maps a user-entered code to its stored form. Codes are
// case-insensitive and kept upper-case.
func Canonicalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate decides whether the promo record entitles the given order total
// to a discount. It is a pure function of its inputs: it never touches the
// usage counter and calling it twice returns the same result, so a checkout
// flow can safely re-validate after a retry. Usage is committed separately
// via the store's IncrementUsage after a successful checkout.
//
// Percentage discounts round half up; fixed discounts never exceed the
// order total.
func Validate(code string, totalAmount int64, record *models.PromoCode, now time.Time) Result {
	if record == nil || !record.Active {
		return Result{Valid: false, Reason: ReasonNotFound}
	}
	if Canonicalize(code) != record.Code {
		return Result{Valid: false, Reason: ReasonNotFound}
	}
	if record.ValidFrom != nil && now.Before(*record.ValidFrom) {
		return Result{Valid: false, Reason: ReasonNotYetActive}
	}
	if record.ValidUntil != nil && now.After(*record.ValidUntil) {
		return Result{Valid: false, Reason: ReasonExpired}
	}
	if record.UsageLimit > 0 && record.UsedCount >= record.UsageLimit {
		return Result{Valid: false, Reason: ReasonUsageLimitReached}
	}

	// Percent takes priority when the record carries both.
	if record.DiscountPercent > 0 {
		return Result{
			Valid:           true,
			DiscountPercent: record.DiscountPercent,
			DiscountAmount:  models.PercentOf(totalAmount, record.DiscountPercent),
		}
	}

	amount := record.DiscountAmount
	if amount > totalAmount {
		amount = totalAmount
	}
	return Result{Valid: true, DiscountAmount: amount}
}

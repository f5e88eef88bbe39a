package b2b

import (
	"festival-tickets/internal/models"
)

// MinQuantityForEligibility is the default order size below which corporate
// pricing does not apply at all. Orders under the minimum must be blocked,
// not silently charged full price.
const MinQuantityForEligibility = 50

// DiscountTier is one row of the bulk discount table. MaxQuantity of 0 means
// the tier is unbounded above.
type DiscountTier struct {
	MinQuantity     int `json:"min_quantity"`
	MaxQuantity     int `json:"max_quantity,omitempty"`
	DiscountPercent int `json:"discount_percent"`
}

// Contains reports whether the quantity falls inside this tier.
func (t DiscountTier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == 0 || quantity <= t.MaxQuantity
}

// DiscountTiers is the bulk discount table, ascending and non-overlapping by
// construction. Tiers are checked in ascending order; should the table ever
// be edited to overlap, the first match wins.
var DiscountTiers = []DiscountTier{
	{MinQuantity: 50, MaxQuantity: 99, DiscountPercent: 10},
	{MinQuantity: 100, MaxQuantity: 149, DiscountPercent: 12},
	{MinQuantity: 150, MaxQuantity: 199, DiscountPercent: 15},
	{MinQuantity: 200, MaxQuantity: 0, DiscountPercent: 20},
}

// Selection is one ticket choice in a corporate quote request.
type Selection struct {
	TicketTypeID string `json:"ticket_type_id"`
	OptionID     string `json:"option_id,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
}

// Quote is the priced result of a set of selections. When the order is below
// the eligibility minimum, IsEligible is false, no discount applies and
// submission must be refused by the caller.
type Quote struct {
	Subtotal        int64         `json:"subtotal"`
	TotalQuantity   int           `json:"total_quantity"`
	IsEligible      bool          `json:"is_eligible"`
	Tier            *DiscountTier `json:"tier,omitempty"`
	DiscountPercent int           `json:"discount_percent"`
	DiscountAmount  int64         `json:"discount_amount"`
	FinalAmount     int64         `json:"final_amount"`
	TicketsToNext   int           `json:"tickets_to_next_tier,omitempty"`
}

// Price computes the bulk-discounted total for the given selections. It is a
// pure function: safe to call concurrently, repeatedly and for any input.
// Negative or zero quantities simply contribute nothing.
func Price(selections []Selection, minQuantity int) Quote {
	if minQuantity <= 0 {
		minQuantity = MinQuantityForEligibility
	}

	var quote Quote
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		quote.TotalQuantity += sel.Quantity
		quote.Subtotal += int64(sel.Quantity) * sel.UnitPrice
	}

	quote.IsEligible = quote.TotalQuantity >= minQuantity
	if quote.IsEligible {
		for i := range DiscountTiers {
			if DiscountTiers[i].Contains(quote.TotalQuantity) {
				quote.Tier = &DiscountTiers[i]
				quote.DiscountPercent = DiscountTiers[i].DiscountPercent
				break
			}
		}
	}

	quote.DiscountAmount = models.PercentOf(quote.Subtotal, quote.DiscountPercent)
	quote.FinalAmount = quote.Subtotal - quote.DiscountAmount

	// Upsell hint: how many more tickets reach the next tier. Empty once
	// the order sits in the unbounded top tier.
	for _, tier := range DiscountTiers {
		if tier.MinQuantity > quote.TotalQuantity {
			quote.TicketsToNext = tier.MinQuantity - quote.TotalQuantity
			break
		}
	}

	return quote
}

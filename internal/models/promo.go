package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PromoCode is a retail discount code. Codes are stored upper-case and
// matched case-insensitively. Exactly one of DiscountPercent or
// DiscountAmount should be set; percent takes priority when both are.
type PromoCode struct {
	bun.BaseModel `bun:"table:promo_codes"`

	Code            string     `bun:"code,pk" json:"code"`
	Active          bool       `bun:"active,notnull,default:true" json:"active"`
	ValidFrom       *time.Time `bun:"valid_from,nullzero" json:"valid_from,omitempty"`
	ValidUntil      *time.Time `bun:"valid_until,nullzero" json:"valid_until,omitempty"`
	UsageLimit      int        `bun:"usage_limit,nullzero" json:"usage_limit,omitempty"`
	UsedCount       int        `bun:"used_count,notnull,default:0" json:"used_count"`
	DiscountPercent int        `bun:"discount_percent,nullzero" json:"discount_percent,omitempty"`
	DiscountAmount  int64      `bun:"discount_amount,nullzero" json:"discount_amount,omitempty"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

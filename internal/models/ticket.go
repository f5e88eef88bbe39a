package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TicketType is one purchasable ticket category as loaded from the catalog.
// The snapshot handed to the cart is read-only for the whole checkout session.
type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	ID          string         `bun:"id,pk" json:"id"`
	Name        string         `bun:"name,notnull" json:"name"`
	BasePrice   int64          `bun:"base_price,notnull" json:"base_price"`
	Currency    string         `bun:"currency,notnull,default:'EUR'" json:"currency"`
	MaxPerOrder int            `bun:"max_per_order,notnull,default:10" json:"max_per_order"`
	Options     []TicketOption `bun:"rel:has-many,join:id=ticket_type_id" json:"options"`
	CreatedAt   time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// DefaultMaxPerOrder applies when the catalog row carries no explicit cap.
const DefaultMaxPerOrder = 10

type TicketOption struct {
	bun.BaseModel `bun:"table:ticket_options"`

	ID            string `bun:"id,pk" json:"id"`
	TicketTypeID  string `bun:"ticket_type_id,notnull" json:"ticket_type_id"`
	Label         string `bun:"label,notnull" json:"label"`
	PriceModifier int64  `bun:"price_modifier,notnull,default:0" json:"price_modifier"`
	IsDefault     bool   `bun:"is_default,notnull,default:false" json:"is_default"`
	SortOrder     int    `bun:"sort_order,notnull,default:0" json:"sort_order"`
}

// Option returns the option with the given ID, or nil.
func (t *TicketType) Option(optionID string) *TicketOption {
	for i := range t.Options {
		if t.Options[i].ID == optionID {
			return &t.Options[i]
		}
	}
	return nil
}

// DefaultOption returns the option flagged as default. If the catalog data
// marks more than one, the first in catalog order wins.
func (t *TicketType) DefaultOption() *TicketOption {
	for i := range t.Options {
		if t.Options[i].IsDefault {
			return &t.Options[i]
		}
	}
	return nil
}

// UnitPrice is the effective per-ticket price for an option choice:
// base price plus the option's signed modifier.
func (t *TicketType) UnitPrice(option *TicketOption) int64 {
	if option == nil {
		return t.BasePrice
	}
	return t.BasePrice + option.PriceModifier
}

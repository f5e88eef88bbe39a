package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"festival-tickets/internal/cart"
	"festival-tickets/internal/models"
)

func dayPass() models.TicketType {
	return models.TicketType{
		ID:          "tt-day-pass",
		Name:        "Day Pass",
		BasePrice:   9500,
		Currency:    "EUR",
		MaxPerOrder: 10,
		Options: []models.TicketOption{
			{ID: "opt-fri", TicketTypeID: "tt-day-pass", Label: "Friday", PriceModifier: 0, IsDefault: true},
			{ID: "opt-sat", TicketTypeID: "tt-day-pass", Label: "Saturday", PriceModifier: 1500},
		},
	}
}

func vipPass() models.TicketType {
	return models.TicketType{
		ID:          "tt-vip",
		Name:        "VIP Pass",
		BasePrice:   52000,
		Currency:    "EUR",
		MaxPerOrder: 4,
	}
}

func TestSetQuantityMergesSameKey(t *testing.T) {
	c := cart.New()
	ticket := dayPass()
	option := &ticket.Options[1] // Saturday

	c.SetQuantity(ticket, 3, option)
	c.SetQuantity(ticket, 5, option)

	assert.Len(t, c.Lines, 1, "repeated sets on the same key must merge, not duplicate")
	assert.Equal(t, 5, c.Quantity("tt-day-pass", "opt-sat"), "quantity is replaced, not summed")
}

func TestQuantityMatchesOnFullKey(t *testing.T) {
	c := cart.New()
	ticket := dayPass()

	c.SetQuantity(ticket, 2, &ticket.Options[0])

	assert.Equal(t, 2, c.Quantity("tt-day-pass", "opt-fri"))
	assert.Equal(t, 0, c.Quantity("tt-day-pass", "opt-sat"), "option is part of the line identity")
	assert.Equal(t, 0, c.Quantity("tt-day-pass", ""), "the bare ticket type is a different key")
}

func TestSetQuantityClampsToMax(t *testing.T) {
	c := cart.New()
	vip := vipPass()

	c.SetQuantity(vip, 99, nil)
	assert.Equal(t, 4, c.Quantity("tt-vip", ""))

	c.SetQuantity(vip, 1, nil)
	assert.Equal(t, 1, c.Quantity("tt-vip", ""))
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	c := cart.New()
	ticket := dayPass()

	c.SetQuantity(ticket, 2, nil)
	c.SetQuantity(ticket, 0, nil)
	assert.Empty(t, c.Lines, "quantity 0 removes the line")

	c.SetQuantity(ticket, -3, nil)
	assert.Empty(t, c.Lines, "negative quantity is a removal, never stored")
}

func TestSetQuantityMissingMaxFallsBackToDefault(t *testing.T) {
	c := cart.New()
	ticket := models.TicketType{ID: "tt-x", BasePrice: 1000}

	c.SetQuantity(ticket, 50, nil)
	assert.Equal(t, models.DefaultMaxPerOrder, c.Quantity("tt-x", ""))
}

func TestSwitchingOptionReplacesLine(t *testing.T) {
	c := cart.New()
	ticket := dayPass()

	c.SetQuantity(ticket, 2, &ticket.Options[0])
	c.SetQuantity(ticket, 3, &ticket.Options[1])

	assert.Len(t, c.Lines, 1, "a ticket type has one active option at a time")
	assert.Equal(t, 0, c.Quantity("tt-day-pass", "opt-fri"))
	assert.Equal(t, 3, c.Quantity("tt-day-pass", "opt-sat"))

	selected := c.SelectedOption(ticket)
	assert.NotNil(t, selected)
	assert.Equal(t, "opt-sat", selected.ID)
}

func TestSelectedOptionNilWithoutOption(t *testing.T) {
	c := cart.New()
	vip := vipPass()

	c.SetQuantity(vip, 2, nil)
	assert.Nil(t, c.SelectedOption(vip))
	assert.Nil(t, c.SelectedOption(dayPass()), "absent ticket type has no selection")
}

func TestTotalsRecomputedFromLines(t *testing.T) {
	c := cart.New()
	ticket := dayPass()
	vip := vipPass()

	c.SetQuantity(ticket, 3, &ticket.Options[1]) // 3 x 11000
	c.SetQuantity(vip, 2, nil)                   // 2 x 52000

	assert.Equal(t, 5, c.TotalItems())
	assert.Equal(t, int64(3*11000+2*52000), c.TotalPrice())

	// Totals follow every mutation with no drift.
	c.SetQuantity(vip, 1, nil)
	assert.Equal(t, 4, c.TotalItems())
	assert.Equal(t, int64(3*11000+1*52000), c.TotalPrice())
}

func TestClear(t *testing.T) {
	c := cart.New()
	ticket := dayPass()

	c.SetQuantity(ticket, 2, nil)
	c.Clear()

	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, int64(0), c.TotalPrice())
}

func TestDefaultOptionFirstWins(t *testing.T) {
	ticket := models.TicketType{
		ID: "tt-double-default",
		Options: []models.TicketOption{
			{ID: "opt-a", IsDefault: true},
			{ID: "opt-b", IsDefault: true},
		},
	}
	def := ticket.DefaultOption()
	assert.NotNil(t, def)
	assert.Equal(t, "opt-a", def.ID, "first flagged default wins")
}

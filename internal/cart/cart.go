package cart

import (
	"festival-tickets/internal/models"
)

// Cart holds the line items for one shopper session. It is a plain value
// owned by the request context; persistence happens through the Service, not
// through any global state.
//
// Invariants maintained by SetQuantity:
//   - at most one line per (ticket type, option) key
//   - exactly one active option per ticket type
//   - stored quantities are always within [1, maxPerOrder]
type Cart struct {
	Lines []models.CartLine `json:"lines"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// SetQuantity sets the quantity for the given ticket type and option choice.
// A quantity of zero or less removes the line. Quantities above the ticket
// type's per-order cap are clamped, not rejected: the shopper always ends up
// with a valid cart, never an error.
func (c *Cart) SetQuantity(ticketType models.TicketType, quantity int, option *models.TicketOption) {
	key := models.CartKey{TicketTypeID: ticketType.ID}
	if option != nil {
		key.OptionID = option.ID
	}

	if quantity <= 0 {
		c.removeTicketType(ticketType.ID)
		return
	}

	maxPerOrder := ticketType.MaxPerOrder
	if maxPerOrder <= 0 {
		maxPerOrder = models.DefaultMaxPerOrder
	}
	if quantity > maxPerOrder {
		quantity = maxPerOrder
	}

	line := models.CartLine{
		TicketTypeID: key.TicketTypeID,
		OptionID:     key.OptionID,
		Quantity:     quantity,
		UnitPrice:    ticketType.UnitPrice(option),
	}

	// A ticket type has one active option at a time: switching options
	// replaces the existing line instead of adding a second variant.
	for i := range c.Lines {
		if c.Lines[i].TicketTypeID == ticketType.ID {
			c.Lines[i] = line
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// Quantity returns the stored quantity for the composite key, 0 if absent.
func (c *Cart) Quantity(ticketTypeID, optionID string) int {
	key := models.CartKey{TicketTypeID: ticketTypeID, OptionID: optionID}
	for _, line := range c.Lines {
		if line.Key() == key {
			return line.Quantity
		}
	}
	return 0
}

// SelectedOption returns the option bound to the ticket type's active line,
// or nil when the ticket type is not in the cart or has no option selected.
func (c *Cart) SelectedOption(ticketType models.TicketType) *models.TicketOption {
	for _, line := range c.Lines {
		if line.TicketTypeID == ticketType.ID && line.OptionID != "" {
			return ticketType.Option(line.OptionID)
		}
	}
	return nil
}

// TotalItems is the sum of all line quantities, recomputed on every call.
func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice is the sum of quantity times effective unit price over all
// lines, recomputed fresh so it can never drift from the line data.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, line := range c.Lines {
		total += int64(line.Quantity) * line.UnitPrice
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) removeTicketType(ticketTypeID string) {
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.TicketTypeID != ticketTypeID {
			kept = append(kept, line)
		}
	}
	c.Lines = kept
	if len(c.Lines) == 0 {
		c.Lines = nil
	}
}

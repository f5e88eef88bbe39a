package models

// CartLine is one line of a shopper's cart, identified by the composite
// (ticket type, option) key. OptionID is empty when the ticket type has no
// option selected.
type CartLine struct {
	TicketTypeID string `json:"ticket_type_id"`
	OptionID     string `json:"option_id,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
}

// Key returns the composite identity of the line.
func (l CartLine) Key() CartKey {
	return CartKey{TicketTypeID: l.TicketTypeID, OptionID: l.OptionID}
}

// CartKey identifies a cart line. At most one line exists per key.
type CartKey struct {
	TicketTypeID string
	OptionID     string
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus is the closed set of B2B order lifecycle states. Orders are
// never deleted; they only ever move forward through these states or into
// StatusCancelled.
type OrderStatus string

const (
	StatusPending          OrderStatus = "pending"
	StatusInvoiceSent      OrderStatus = "invoice_sent"
	StatusPaid             OrderStatus = "paid"
	StatusTicketsGenerated OrderStatus = "tickets_generated"
	StatusTicketsSent      OrderStatus = "tickets_sent"
	StatusCompleted        OrderStatus = "completed"
	StatusCancelled        OrderStatus = "cancelled"
)

// Terminal reports whether no further transition may leave this status.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentMethod selects how a corporate order is settled.
type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentInvoice PaymentMethod = "invoice"
)

// B2BOrder is a corporate bulk order. Status changes only through the
// guarded transitions in the b2b package, each recorded in the history log.
type B2BOrder struct {
	bun.BaseModel `bun:"table:b2b_orders,alias:o"`

	ID              string            `bun:"id,pk" json:"id"`
	OrderNumber     string            `bun:"order_number,notnull,unique" json:"order_number"`
	CompanyName     string            `bun:"company_name,notnull" json:"company_name"`
	CompanyVATID    string            `bun:"company_vat_id,nullzero" json:"company_vat_id,omitempty"`
	ContactName     string            `bun:"contact_name,notnull" json:"contact_name"`
	ContactEmail    string            `bun:"contact_email,notnull" json:"contact_email"`
	ContactPhone    string            `bun:"contact_phone,nullzero" json:"contact_phone,omitempty"`
	Items           []B2BOrderItem    `bun:"rel:has-many,join:id=order_id" json:"items"`
	Subtotal        int64             `bun:"subtotal,notnull" json:"subtotal"`
	DiscountPercent int               `bun:"discount_percent,notnull" json:"discount_percent"`
	DiscountAmount  int64             `bun:"discount_amount,notnull" json:"discount_amount"`
	FinalAmount     int64             `bun:"final_amount,notnull" json:"final_amount"`
	Currency        string            `bun:"currency,notnull,default:'EUR'" json:"currency"`
	PaymentMethod   PaymentMethod     `bun:"payment_method,notnull" json:"payment_method"`
	Status          OrderStatus       `bun:"status,notnull" json:"status"`
	InvoiceURL      string            `bun:"invoice_url,nullzero" json:"invoice_url,omitempty"`
	Notes           string            `bun:"notes,nullzero" json:"notes,omitempty"`
	CreatedAt       time.Time         `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	History         []B2BOrderHistory `bun:"rel:has-many,join:id=order_id" json:"history,omitempty"`
}

type B2BOrderItem struct {
	bun.BaseModel `bun:"table:b2b_order_items"`

	ID              string `bun:"id,pk" json:"id"`
	OrderID         string `bun:"order_id,notnull" json:"order_id"`
	TicketTypeID    string `bun:"ticket_type_id,notnull" json:"ticket_type_id"`
	OptionID        string `bun:"option_id,nullzero" json:"option_id,omitempty"`
	Quantity        int    `bun:"quantity,notnull" json:"quantity"`
	UnitPrice       int64  `bun:"unit_price,notnull" json:"unit_price"`
	DiscountPercent int    `bun:"discount_percent,notnull" json:"discount_percent"`
	LineTotal       int64  `bun:"line_total,notnull" json:"line_total"`
}

// B2BOrderHistory is one append-only entry of the order's transition log.
type B2BOrderHistory struct {
	bun.BaseModel `bun:"table:b2b_order_history"`

	ID         string      `bun:"id,pk" json:"id"`
	OrderID    string      `bun:"order_id,notnull" json:"order_id"`
	FromStatus OrderStatus `bun:"from_status,notnull" json:"from_status"`
	ToStatus   OrderStatus `bun:"to_status,notnull" json:"to_status"`
	Actor      string      `bun:"actor,notnull" json:"actor"`
	Note       string      `bun:"note,nullzero" json:"note,omitempty"`
	CreatedAt  time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// TotalQuantity sums the quantities of all line items.
func (o *B2BOrder) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// TicketArtifact is one issued ticket, persisted with its QR payload and
// handed to the delivery collaborator once the order is sent.
type TicketArtifact struct {
	bun.BaseModel `bun:"table:b2b_tickets"`

	TicketID     string    `bun:"ticket_id,pk" json:"ticket_id"`
	OrderID      string    `bun:"order_id,notnull" json:"order_id"`
	TicketTypeID string    `bun:"ticket_type_id,notnull" json:"ticket_type_id"`
	OptionID     string    `bun:"option_id,nullzero" json:"option_id,omitempty"`
	QRCode       []byte    `bun:"qr_code,notnull" json:"qr_code"`
	IssuedAt     time.Time `bun:"issued_at,notnull" json:"issued_at"`
}

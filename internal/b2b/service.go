package b2b

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"festival-tickets/internal/logger"
	"festival-tickets/internal/models"
)

type DBLayer interface {
	CreateOrder(ctx context.Context, order *models.B2BOrder, entry models.B2BOrderHistory) error
	GetOrderByID(ctx context.Context, id string) (*models.B2BOrder, error)
	// UpdateOrderStatus performs the compare-and-swap status write together
	// with the history insert. It returns false when the stored status no
	// longer matches expected.
	UpdateOrderStatus(ctx context.Context, orderID string, expected, next models.OrderStatus, entry models.B2BOrderHistory) (bool, error)
	SetInvoiceURL(ctx context.Context, orderID, url string) error
	// SaveTickets replaces the order's stored artifacts. Replace semantics
	// keep ticket generation idempotent: when two admins race, the loser's
	// write swaps one complete set for another instead of appending a
	// duplicate set.
	SaveTickets(ctx context.Context, artifacts []models.TicketArtifact) error
	GetTicketsByOrder(ctx context.Context, orderID string) ([]models.TicketArtifact, error)
}

type KafkaPublisher interface {
	PublishOrderCreated(order *models.B2BOrder) error
	PublishStatusChanged(order *models.B2BOrder, from, to models.OrderStatus, actor string) error
}

type CatalogReader interface {
	GetTicketType(ctx context.Context, id string) (*models.TicketType, error)
}

type InvoiceGenerator interface {
	GenerateInvoiceDocument(ctx context.Context, order *models.B2BOrder) (string, error)
}

type TicketService interface {
	IssueTickets(ctx context.Context, order *models.B2BOrder) ([]models.TicketArtifact, error)
	DeliverTickets(ctx context.Context, order *models.B2BOrder, artifacts []models.TicketArtifact) error
}

type PaymentGateway interface {
	InitiatePayment(ctx context.Context, orderID string, amount int64, currency string) (string, error)
}

// Service drives corporate orders from submission through fulfillment.
// Every status change is an atomic compare-and-swap against the backing
// store, so two admins racing on the same order produce exactly one
// successful transition and one ErrStatusConflict.
type Service struct {
	DB          DBLayer
	Catalog     CatalogReader
	Kafka       KafkaPublisher
	Invoices    InvoiceGenerator
	Tickets     TicketService
	Payments    PaymentGateway
	MinQuantity int
	logger      *logger.Logger
}

func NewService(db DBLayer, catalog CatalogReader, kafka KafkaPublisher, invoices InvoiceGenerator, tickets TicketService, payments PaymentGateway, minQuantity int, log *logger.Logger) *Service {
	if minQuantity <= 0 {
		minQuantity = MinQuantityForEligibility
	}
	return &Service{
		DB:          db,
		Catalog:     catalog,
		Kafka:       kafka,
		Invoices:    invoices,
		Tickets:     tickets,
		Payments:    payments,
		MinQuantity: minQuantity,
		logger:      log,
	}
}

// SubmitRequest is a corporate order submission.
type SubmitRequest struct {
	CompanyName   string               `json:"company_name"`
	CompanyVATID  string               `json:"company_vat_id,omitempty"`
	ContactName   string               `json:"contact_name"`
	ContactEmail  string               `json:"contact_email"`
	ContactPhone  string               `json:"contact_phone,omitempty"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Notes         string               `json:"notes,omitempty"`
	Selections    []SelectionRequest   `json:"selections"`
}

type SelectionRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	OptionID     string `json:"option_id,omitempty"`
	Quantity     int    `json:"quantity"`
}

// SubmitResult carries the created order plus the payment redirect for
// online orders. PaymentError is set when the order was created but the
// payment collaborator could not be reached; the order stays pending and
// payment can be retried.
type SubmitResult struct {
	Order        *models.B2BOrder `json:"order"`
	Quote        Quote            `json:"quote"`
	PaymentURL   string           `json:"payment_url,omitempty"`
	PaymentError string           `json:"payment_error,omitempty"`
}

// QuoteSelections resolves catalog prices for the requested selections and
// runs the pricing calculator. Used both for the quote preview endpoint and
// during submission.
func (s *Service) QuoteSelections(ctx context.Context, requests []SelectionRequest) ([]Selection, Quote, error) {
	selections := make([]Selection, 0, len(requests))
	for _, req := range requests {
		ticketType, err := s.Catalog.GetTicketType(ctx, req.TicketTypeID)
		if err != nil {
			return nil, Quote{}, fmt.Errorf("resolve ticket type %s: %w", req.TicketTypeID, err)
		}
		var option *models.TicketOption
		if req.OptionID != "" {
			option = ticketType.Option(req.OptionID)
			if option == nil {
				return nil, Quote{}, fmt.Errorf("ticket type %s has no option %s", req.TicketTypeID, req.OptionID)
			}
		}
		selections = append(selections, Selection{
			TicketTypeID: req.TicketTypeID,
			OptionID:     req.OptionID,
			Quantity:     req.Quantity,
			UnitPrice:    ticketType.UnitPrice(option),
		})
	}
	return selections, Price(selections, s.MinQuantity), nil
}

// SubmitOrder prices the request, refuses it below the eligibility minimum,
// and creates the order in status pending.
func (s *Service) SubmitOrder(ctx context.Context, req SubmitRequest, actor string) (*SubmitResult, error) {
	selections, quote, err := s.QuoteSelections(ctx, req.Selections)
	if err != nil {
		return nil, err
	}
	if !quote.IsEligible {
		return nil, fmt.Errorf("%d of %d tickets: %w", quote.TotalQuantity, s.MinQuantity, ErrBelowMinimum)
	}

	now := time.Now()
	orderID := uuid.NewString()
	order := &models.B2BOrder{
		ID:              orderID,
		OrderNumber:     fmt.Sprintf("B2B-%d-%s", now.Year(), orderID[:8]),
		CompanyName:     req.CompanyName,
		CompanyVATID:    req.CompanyVATID,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Subtotal:        quote.Subtotal,
		DiscountPercent: quote.DiscountPercent,
		DiscountAmount:  quote.DiscountAmount,
		FinalAmount:     quote.FinalAmount,
		Currency:        "EUR",
		PaymentMethod:   req.PaymentMethod,
		Status:          models.StatusPending,
		Notes:           req.Notes,
		CreatedAt:       now,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.PaymentInvoice
	}
	for _, sel := range selections {
		order.Items = append(order.Items, models.B2BOrderItem{
			ID:              uuid.NewString(),
			OrderID:         orderID,
			TicketTypeID:    sel.TicketTypeID,
			OptionID:        sel.OptionID,
			Quantity:        sel.Quantity,
			UnitPrice:       sel.UnitPrice,
			DiscountPercent: quote.DiscountPercent,
			LineTotal:       int64(sel.Quantity) * sel.UnitPrice,
		})
	}

	entry := models.B2BOrderHistory{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		FromStatus: models.StatusPending,
		ToStatus:   models.StatusPending,
		Actor:      actor,
		Note:       "order created",
		CreatedAt:  now,
	}
	if err := s.DB.CreateOrder(ctx, order, entry); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.logger.LogOrder("SUBMIT", orderID, fmt.Sprintf("%d tickets, %d%% tier, final %d", quote.TotalQuantity, quote.DiscountPercent, quote.FinalAmount))

	if err := s.Kafka.PublishOrderCreated(order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("publish order created for %s: %v", orderID, err))
	}

	result := &SubmitResult{Order: order, Quote: quote}
	if order.PaymentMethod == models.PaymentOnline {
		url, err := s.Payments.InitiatePayment(ctx, orderID, order.FinalAmount, order.Currency)
		if err != nil {
			// The order exists in pending either way; the operator can
			// retry payment initiation.
			s.logger.Error("PAYMENT", fmt.Sprintf("initiate payment for order %s: %v", orderID, err))
			result.PaymentError = err.Error()
		} else {
			result.PaymentURL = url
		}
	}
	return result, nil
}

// GetOrder returns the order with its items and transition history.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.B2BOrder, error) {
	return s.DB.GetOrderByID(ctx, orderID)
}

// GenerateInvoice produces (or reproduces) the invoice document. The first
// successful generation moves the order to invoice_sent; regenerating from
// invoice_sent only refreshes the artifact reference.
func (s *Service) GenerateInvoice(ctx context.Context, orderID, actor string) (*models.B2BOrder, error) {
	order, err := s.DB.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	if _, err := guard(orderID, ActionGenerateInvoice, order.Status); err != nil {
		return nil, err
	}

	url, err := s.Invoices.GenerateInvoiceDocument(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("order %s: generate invoice: %w", orderID, err)
	}
	if err := s.DB.SetInvoiceURL(ctx, orderID, url); err != nil {
		return nil, fmt.Errorf("order %s: store invoice url: %w", orderID, err)
	}
	order.InvoiceURL = url

	if order.Status == models.StatusInvoiceSent {
		// Idempotent regeneration, no transition to record.
		return order, nil
	}
	return s.applyTransition(ctx, order, ActionGenerateInvoice, actor, "invoice generated")
}

// MarkPaid records payment confirmation. This is the single point where
// revenue is recognized; the actor lands in the audit trail.
func (s *Service) MarkPaid(ctx context.Context, orderID, actor, note string) (*models.B2BOrder, error) {
	if note == "" {
		note = "payment confirmed"
	}
	return s.runAction(ctx, orderID, ActionMarkPaid, actor, note, nil)
}

// GenerateTickets issues one ticket per ordered unit. It hard-fails unless
// the order is paid: tickets are never created for unpaid orders.
func (s *Service) GenerateTickets(ctx context.Context, orderID, actor string) (*models.B2BOrder, error) {
	return s.runAction(ctx, orderID, ActionGenerateTickets, actor, "tickets generated",
		func(ctx context.Context, order *models.B2BOrder) error {
			artifacts, err := s.Tickets.IssueTickets(ctx, order)
			if err != nil {
				return fmt.Errorf("issue tickets: %w", err)
			}
			if err := s.DB.SaveTickets(ctx, artifacts); err != nil {
				return fmt.Errorf("save tickets: %w", err)
			}
			s.logger.LogOrder("TICKETS", orderID, fmt.Sprintf("issued %d tickets", len(artifacts)))
			return nil
		})
}

// SendTickets hands the issued artifacts to the delivery collaborator.
func (s *Service) SendTickets(ctx context.Context, orderID, actor string) (*models.B2BOrder, error) {
	return s.runAction(ctx, orderID, ActionSendTickets, actor, "tickets sent",
		func(ctx context.Context, order *models.B2BOrder) error {
			artifacts, err := s.DB.GetTicketsByOrder(ctx, orderID)
			if err != nil {
				return fmt.Errorf("load tickets: %w", err)
			}
			if err := s.Tickets.DeliverTickets(ctx, order, artifacts); err != nil {
				return fmt.Errorf("deliver tickets: %w", err)
			}
			return nil
		})
}

// Complete closes out a delivered order.
func (s *Service) Complete(ctx context.Context, orderID, actor string) (*models.B2BOrder, error) {
	return s.runAction(ctx, orderID, ActionComplete, actor, "order completed", nil)
}

// Cancel moves the order to cancelled from any non-terminal status. When
// tickets were already issued the history note says so, since a refund or
// recall will be needed downstream.
func (s *Service) Cancel(ctx context.Context, orderID, actor, note string) (*models.B2BOrder, error) {
	order, err := s.DB.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	if _, err := guard(orderID, ActionCancel, order.Status); err != nil {
		return nil, err
	}

	if order.Status == models.StatusTicketsGenerated || order.Status == models.StatusTicketsSent {
		if note != "" {
			note += "; "
		}
		note += "tickets were already issued"
	}
	if note == "" {
		note = "order cancelled"
	}
	return s.applyTransition(ctx, order, ActionCancel, actor, note)
}

// runAction is the shared guarded-transition path: read, validate the
// guard, run the collaborator side effect, then CAS the new status together
// with the history entry. A failing side effect leaves the status untouched
// and the action safe to retry.
func (s *Service) runAction(ctx context.Context, orderID string, action Action, actor, note string, sideEffect func(context.Context, *models.B2BOrder) error) (*models.B2BOrder, error) {
	order, err := s.DB.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	if _, err := guard(orderID, action, order.Status); err != nil {
		return nil, err
	}
	if sideEffect != nil {
		if err := sideEffect(ctx, order); err != nil {
			return nil, fmt.Errorf("order %s: %s: %w", orderID, action, err)
		}
	}
	return s.applyTransition(ctx, order, action, actor, note)
}

func (s *Service) applyTransition(ctx context.Context, order *models.B2BOrder, action Action, actor, note string) (*models.B2BOrder, error) {
	next, err := guard(order.ID, action, order.Status)
	if err != nil {
		return nil, err
	}
	entry := models.B2BOrderHistory{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   next,
		Actor:      actor,
		Note:       note,
		CreatedAt:  time.Now(),
	}
	ok, err := s.DB.UpdateOrderStatus(ctx, order.ID, order.Status, next, entry)
	if err != nil {
		return nil, fmt.Errorf("order %s: update status: %w", order.ID, err)
	}
	if !ok {
		return nil, fmt.Errorf("order %s: %s: %w", order.ID, action, ErrStatusConflict)
	}

	from := order.Status
	order.Status = next
	order.History = append(order.History, entry)
	s.logger.LogOrder(string(action), order.ID, fmt.Sprintf("%s -> %s by %s", from, next, actor))

	if err := s.Kafka.PublishStatusChanged(order, from, next, actor); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("publish status change for %s: %v", order.ID, err))
	}
	return order, nil
}

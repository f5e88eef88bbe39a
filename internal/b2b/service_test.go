package b2b_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"festival-tickets/internal/b2b"
	"festival-tickets/internal/logger"
	"festival-tickets/internal/models"
)

// Mock implementations

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateOrder(ctx context.Context, order *models.B2BOrder, entry models.B2BOrderHistory) error {
	args := m.Called(order, entry)
	return args.Error(0)
}

func (m *MockDBLayer) GetOrderByID(ctx context.Context, id string) (*models.B2BOrder, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.B2BOrder), args.Error(1)
}

func (m *MockDBLayer) UpdateOrderStatus(ctx context.Context, orderID string, expected, next models.OrderStatus, entry models.B2BOrderHistory) (bool, error) {
	args := m.Called(orderID, expected, next, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) SetInvoiceURL(ctx context.Context, orderID, url string) error {
	args := m.Called(orderID, url)
	return args.Error(0)
}

func (m *MockDBLayer) SaveTickets(ctx context.Context, artifacts []models.TicketArtifact) error {
	args := m.Called(artifacts)
	return args.Error(0)
}

func (m *MockDBLayer) GetTicketsByOrder(ctx context.Context, orderID string) ([]models.TicketArtifact, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TicketArtifact), args.Error(1)
}

type MockKafka struct {
	mock.Mock
}

func (m *MockKafka) PublishOrderCreated(order *models.B2BOrder) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockKafka) PublishStatusChanged(order *models.B2BOrder, from, to models.OrderStatus, actor string) error {
	args := m.Called(order, from, to, actor)
	return args.Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketType), args.Error(1)
}

type MockInvoices struct {
	mock.Mock
}

func (m *MockInvoices) GenerateInvoiceDocument(ctx context.Context, order *models.B2BOrder) (string, error) {
	args := m.Called(order)
	return args.String(0), args.Error(1)
}

type MockTickets struct {
	mock.Mock
}

func (m *MockTickets) IssueTickets(ctx context.Context, order *models.B2BOrder) ([]models.TicketArtifact, error) {
	args := m.Called(order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TicketArtifact), args.Error(1)
}

func (m *MockTickets) DeliverTickets(ctx context.Context, order *models.B2BOrder, artifacts []models.TicketArtifact) error {
	args := m.Called(order, artifacts)
	return args.Error(0)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) InitiatePayment(ctx context.Context, orderID string, amount int64, currency string) (string, error) {
	args := m.Called(orderID, amount, currency)
	return args.String(0), args.Error(1)
}

type fixture struct {
	db       *MockDBLayer
	kafka    *MockKafka
	catalog  *MockCatalog
	invoices *MockInvoices
	tickets  *MockTickets
	payments *MockPayments
	service  *b2b.Service
}

func newFixture() *fixture {
	f := &fixture{
		db:       new(MockDBLayer),
		kafka:    new(MockKafka),
		catalog:  new(MockCatalog),
		invoices: new(MockInvoices),
		tickets:  new(MockTickets),
		payments: new(MockPayments),
	}
	f.service = b2b.NewService(f.db, f.catalog, f.kafka, f.invoices, f.tickets, f.payments, 50, logger.NewLogger())
	return f
}

func orderInStatus(status models.OrderStatus) *models.B2BOrder {
	return &models.B2BOrder{
		ID:            "order-1",
		OrderNumber:   "B2B-2026-abc12345",
		CompanyName:   "Acme GmbH",
		ContactName:   "Pat",
		ContactEmail:  "pat@acme.example",
		Status:        status,
		PaymentMethod: models.PaymentInvoice,
		Currency:      "EUR",
		Items: []models.B2BOrderItem{
			{ID: "item-1", OrderID: "order-1", TicketTypeID: "tt-day-pass", Quantity: 120, UnitPrice: 25000, DiscountPercent: 12, LineTotal: 3000000},
		},
		Subtotal:        3000000,
		DiscountPercent: 12,
		DiscountAmount:  360000,
		FinalAmount:     2640000,
	}
}

func TestSubmitOrderBelowMinimumIsRejected(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetTicketType", "tt-day-pass").Return(&models.TicketType{ID: "tt-day-pass", BasePrice: 25000}, nil)

	_, err := f.service.SubmitOrder(context.Background(), b2b.SubmitRequest{
		CompanyName:  "Acme GmbH",
		ContactName:  "Pat",
		ContactEmail: "pat@acme.example",
		Selections:   []b2b.SelectionRequest{{TicketTypeID: "tt-day-pass", Quantity: 49}},
	}, "pat")

	assert.ErrorIs(t, err, b2b.ErrBelowMinimum, "ineligibility is a hard gate, not a full-price fallback")
	f.db.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestSubmitOrderCreatesPendingOrder(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetTicketType", "tt-day-pass").Return(&models.TicketType{ID: "tt-day-pass", BasePrice: 25000}, nil)
	f.db.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
	f.kafka.On("PublishOrderCreated", mock.Anything).Return(nil)

	result, err := f.service.SubmitOrder(context.Background(), b2b.SubmitRequest{
		CompanyName:   "Acme GmbH",
		ContactName:   "Pat",
		ContactEmail:  "pat@acme.example",
		PaymentMethod: models.PaymentInvoice,
		Selections:    []b2b.SelectionRequest{{TicketTypeID: "tt-day-pass", Quantity: 120}},
	}, "pat")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, result.Order.Status)
	assert.Equal(t, int64(3000000), result.Order.Subtotal)
	assert.Equal(t, 12, result.Order.DiscountPercent)
	assert.Equal(t, int64(360000), result.Order.DiscountAmount)
	assert.Equal(t, int64(2640000), result.Order.FinalAmount)
	assert.Len(t, result.Order.Items, 1)
	f.payments.AssertNotCalled(t, "InitiatePayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitOrderOnlineInitiatesPayment(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetTicketType", "tt-day-pass").Return(&models.TicketType{ID: "tt-day-pass", BasePrice: 25000}, nil)
	f.db.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
	f.kafka.On("PublishOrderCreated", mock.Anything).Return(nil)
	f.payments.On("InitiatePayment", mock.Anything, int64(2640000), "EUR").Return("cs_secret_123", nil)

	result, err := f.service.SubmitOrder(context.Background(), b2b.SubmitRequest{
		CompanyName:   "Acme GmbH",
		ContactName:   "Pat",
		ContactEmail:  "pat@acme.example",
		PaymentMethod: models.PaymentOnline,
		Selections:    []b2b.SelectionRequest{{TicketTypeID: "tt-day-pass", Quantity: 120}},
	}, "pat")

	assert.NoError(t, err)
	assert.Equal(t, "cs_secret_123", result.PaymentURL)
	// Payment initiation never advances status by itself.
	assert.Equal(t, models.StatusPending, result.Order.Status)
}

func TestSubmitOrderPaymentFailureKeepsOrderPending(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetTicketType", "tt-day-pass").Return(&models.TicketType{ID: "tt-day-pass", BasePrice: 25000}, nil)
	f.db.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
	f.kafka.On("PublishOrderCreated", mock.Anything).Return(nil)
	f.payments.On("InitiatePayment", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("gateway timeout"))

	result, err := f.service.SubmitOrder(context.Background(), b2b.SubmitRequest{
		CompanyName:   "Acme GmbH",
		ContactName:   "Pat",
		ContactEmail:  "pat@acme.example",
		PaymentMethod: models.PaymentOnline,
		Selections:    []b2b.SelectionRequest{{TicketTypeID: "tt-day-pass", Quantity: 120}},
	}, "pat")

	assert.NoError(t, err, "the order itself was created")
	assert.Equal(t, models.StatusPending, result.Order.Status)
	assert.Empty(t, result.PaymentURL)
	assert.Contains(t, result.PaymentError, "gateway timeout")
}

func TestGenerateTicketsRejectedUnlessPaid(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.StatusPending, models.StatusInvoiceSent,
		models.StatusTicketsGenerated, models.StatusCancelled,
	} {
		f := newFixture()
		f.db.On("GetOrderByID", "order-1").Return(orderInStatus(status), nil)

		_, err := f.service.GenerateTickets(context.Background(), "order-1", "admin")

		var invalid *b2b.InvalidTransitionError
		assert.ErrorAs(t, err, &invalid, "generate tickets from %s", status)
		f.tickets.AssertNotCalled(t, "IssueTickets", mock.Anything)
		f.db.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestGenerateTicketsFromPaid(t *testing.T) {
	f := newFixture()
	artifacts := []models.TicketArtifact{{TicketID: "t-1", OrderID: "order-1"}}
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusPaid), nil)
	f.tickets.On("IssueTickets", mock.Anything).Return(artifacts, nil)
	f.db.On("SaveTickets", artifacts).Return(nil)
	f.db.On("UpdateOrderStatus", "order-1", models.StatusPaid, models.StatusTicketsGenerated, mock.Anything).Return(true, nil)
	f.kafka.On("PublishStatusChanged", mock.Anything, models.StatusPaid, models.StatusTicketsGenerated, "admin").Return(nil)

	order, err := f.service.GenerateTickets(context.Background(), "order-1", "admin")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusTicketsGenerated, order.Status)
}

func TestGenerateTicketsRaceLoserGetsConflict(t *testing.T) {
	f := newFixture()
	artifacts := []models.TicketArtifact{{TicketID: "t-1", OrderID: "order-1"}}
	// Both admins read paid, but the other one's transition lands first and
	// this CAS misses. The losing write still went through SaveTickets, whose
	// replace semantics keep the stored set a single complete one.
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusPaid), nil)
	f.tickets.On("IssueTickets", mock.Anything).Return(artifacts, nil)
	f.db.On("SaveTickets", artifacts).Return(nil)
	f.db.On("UpdateOrderStatus", "order-1", models.StatusPaid, models.StatusTicketsGenerated, mock.Anything).Return(false, nil)

	_, err := f.service.GenerateTickets(context.Background(), "order-1", "admin")

	assert.ErrorIs(t, err, b2b.ErrStatusConflict)
	f.kafka.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueFailureLeavesStatusUntouched(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusPaid), nil)
	f.tickets.On("IssueTickets", mock.Anything).Return(nil, errors.New("qr service down"))

	_, err := f.service.GenerateTickets(context.Background(), "order-1", "admin")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "order-1")
	f.db.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendTicketsRejectedFromPending(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusPending), nil)

	_, err := f.service.SendTickets(context.Background(), "order-1", "admin")

	var invalid *b2b.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusPending, invalid.Status)
	f.tickets.AssertNotCalled(t, "DeliverTickets", mock.Anything, mock.Anything)
	f.db.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkPaidConflictIsRetryable(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusInvoiceSent), nil)
	// Another admin won the race: the CAS write misses.
	f.db.On("UpdateOrderStatus", "order-1", models.StatusInvoiceSent, models.StatusPaid, mock.Anything).Return(false, nil)

	_, err := f.service.MarkPaid(context.Background(), "order-1", "admin", "")

	assert.ErrorIs(t, err, b2b.ErrStatusConflict)
	f.kafka.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkPaidRecordsActor(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusPending), nil)
	f.db.On("UpdateOrderStatus", "order-1", models.StatusPending, models.StatusPaid, mock.MatchedBy(func(entry models.B2BOrderHistory) bool {
		return entry.Actor == "finance@festival" && entry.FromStatus == models.StatusPending && entry.ToStatus == models.StatusPaid
	})).Return(true, nil)
	f.kafka.On("PublishStatusChanged", mock.Anything, models.StatusPending, models.StatusPaid, "finance@festival").Return(nil)

	order, err := f.service.MarkPaid(context.Background(), "order-1", "finance@festival", "wire ref 4711")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)
}

func TestGenerateInvoiceTransitionsOnFirstGeneration(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusPending), nil)
	f.invoices.On("GenerateInvoiceDocument", mock.Anything).Return("http://docs/invoice-1.txt", nil)
	f.db.On("SetInvoiceURL", "order-1", "http://docs/invoice-1.txt").Return(nil)
	f.db.On("UpdateOrderStatus", "order-1", models.StatusPending, models.StatusInvoiceSent, mock.Anything).Return(true, nil)
	f.kafka.On("PublishStatusChanged", mock.Anything, models.StatusPending, models.StatusInvoiceSent, "admin").Return(nil)

	order, err := f.service.GenerateInvoice(context.Background(), "order-1", "admin")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusInvoiceSent, order.Status)
	assert.Equal(t, "http://docs/invoice-1.txt", order.InvoiceURL)
}

func TestGenerateInvoiceRegenerationDoesNotTransition(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusInvoiceSent), nil)
	f.invoices.On("GenerateInvoiceDocument", mock.Anything).Return("http://docs/invoice-1.txt", nil)
	f.db.On("SetInvoiceURL", "order-1", "http://docs/invoice-1.txt").Return(nil)

	order, err := f.service.GenerateInvoice(context.Background(), "order-1", "admin")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusInvoiceSent, order.Status)
	f.db.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAfterDeliveryRecordsIssuedTickets(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusTicketsSent), nil)
	f.db.On("UpdateOrderStatus", "order-1", models.StatusTicketsSent, models.StatusCancelled, mock.MatchedBy(func(entry models.B2BOrderHistory) bool {
		return entry.ToStatus == models.StatusCancelled && entry.Note == "customer refund; tickets were already issued"
	})).Return(true, nil)
	f.kafka.On("PublishStatusChanged", mock.Anything, models.StatusTicketsSent, models.StatusCancelled, "admin").Return(nil)

	order, err := f.service.Cancel(context.Background(), "order-1", "admin", "customer refund")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)
}

func TestCancelRejectedFromTerminalStatuses(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusCompleted, models.StatusCancelled} {
		f := newFixture()
		f.db.On("GetOrderByID", "order-1").Return(orderInStatus(status), nil)

		_, err := f.service.Cancel(context.Background(), "order-1", "admin", "")

		var invalid *b2b.InvalidTransitionError
		assert.ErrorAs(t, err, &invalid, "cancel from %s", status)
	}
}

func TestCompleteOnlyFromTicketsSent(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusTicketsSent), nil)
	f.db.On("UpdateOrderStatus", "order-1", models.StatusTicketsSent, models.StatusCompleted, mock.Anything).Return(true, nil)
	f.kafka.On("PublishStatusChanged", mock.Anything, models.StatusTicketsSent, models.StatusCompleted, "admin").Return(nil)

	order, err := f.service.Complete(context.Background(), "order-1", "admin")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, order.Status)

	// But never straight from paid.
	f2 := newFixture()
	f2.db.On("GetOrderByID", "order-1").Return(orderInStatus(models.StatusPaid), nil)
	_, err = f2.service.Complete(context.Background(), "order-1", "admin")
	assert.Error(t, err)
}

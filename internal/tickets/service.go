package tickets

import (
	"context"

	"festival-tickets/internal/models"
)

// Deliverer sends issued tickets to the customer.
type Deliverer interface {
	DeliverTickets(ctx context.Context, order *models.B2BOrder, artifacts []models.TicketArtifact) error
}

// Service bundles issuance and delivery behind the collaborator surface the
// order state machine expects.
type Service struct {
	issuer    *Issuer
	deliverer Deliverer
}

func NewService(issuer *Issuer, deliverer Deliverer) *Service {
	return &Service{issuer: issuer, deliverer: deliverer}
}

func (s *Service) IssueTickets(ctx context.Context, order *models.B2BOrder) ([]models.TicketArtifact, error) {
	return s.issuer.IssueTickets(ctx, order)
}

func (s *Service) DeliverTickets(ctx context.Context, order *models.B2BOrder, artifacts []models.TicketArtifact) error {
	return s.deliverer.DeliverTickets(ctx, order, artifacts)
}

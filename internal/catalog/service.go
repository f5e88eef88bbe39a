package catalog

import (
	"context"

	"festival-tickets/internal/models"
)

// Store is the catalog read boundary.
type Store interface {
	GetTicketTypes(ctx context.Context) ([]models.TicketType, error)
	GetTicketType(ctx context.Context, id string) (*models.TicketType, error)
}

// Snapshot is the immutable per-request view of the purchasable catalog.
// The cart treats it as read-only input for the whole checkout session.
type Snapshot struct {
	TicketTypes []models.TicketType
}

// TicketType returns the snapshot entry with the given ID, or nil.
func (s *Snapshot) TicketType(id string) *models.TicketType {
	for i := range s.TicketTypes {
		if s.TicketTypes[i].ID == id {
			return &s.TicketTypes[i]
		}
	}
	return nil
}

// Service loads catalog snapshots.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Snapshot loads the current catalog as an immutable view.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	ticketTypes, err := s.store.GetTicketTypes(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{TicketTypes: ticketTypes}, nil
}

// GetTicketType exposes single-type lookup for the B2B pricing path.
func (s *Service) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	return s.store.GetTicketType(ctx, id)
}

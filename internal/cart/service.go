package cart

import (
	"context"
	"fmt"

	"festival-tickets/internal/logger"
	"festival-tickets/internal/models"
)

// Store persists cart snapshots per shopper session. Load must return
// (nil, nil) for sessions that have no cart yet or whose stored data can no
// longer be decoded; a shopper never sees an error for a corrupt cart, they
// just start fresh.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]models.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []models.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}

// Service loads, mutates and write-through persists one cart per session.
// The cart is single-writer per session, so mutations are plain sequential
// operations; persistence failures are logged and never surfaced to the
// shopper or allowed to diverge the in-memory state.
type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// Get returns the session's cart, falling back to an empty cart when the
// store has nothing usable.
func (s *Service) Get(ctx context.Context, sessionID string) *Cart {
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("CART", fmt.Sprintf("failed to load cart for session %s: %v", sessionID, err))
		return New()
	}
	return &Cart{Lines: lines}
}

// SetQuantity applies one quantity mutation and persists the new snapshot.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, ticketType models.TicketType, quantity int, option *models.TicketOption) *Cart {
	c := s.Get(ctx, sessionID)
	c.SetQuantity(ticketType, quantity, option)
	s.persist(ctx, sessionID, c)
	return c
}

// Clear empties and persists the session's cart.
func (s *Service) Clear(ctx context.Context, sessionID string) {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("CART", fmt.Sprintf("failed to clear cart for session %s: %v", sessionID, err))
	}
}

func (s *Service) persist(ctx context.Context, sessionID string, c *Cart) {
	if err := s.store.Save(ctx, sessionID, c.Lines); err != nil {
		// Write-through is best effort: the in-memory cart stays
		// authoritative for this request either way.
		s.logger.Warn("CART", fmt.Sprintf("failed to persist cart for session %s: %v", sessionID, err))
	}
}

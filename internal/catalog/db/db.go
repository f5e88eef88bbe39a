package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"festival-tickets/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetTicketTypes fetches all ticket types with their options, options in
// catalog order so "first default wins" is deterministic.
func (d *DB) GetTicketTypes(ctx context.Context) ([]models.TicketType, error) {
	var ticketTypes []models.TicketType
	err := d.Bun.NewSelect().
		Model(&ticketTypes).
		Relation("Options", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("sort_order ASC")
		}).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ticket types: %w", err)
	}
	return ticketTypes, nil
}

// GetTicketType fetches one ticket type with its options.
func (d *DB) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	var ticketType models.TicketType
	err := d.Bun.NewSelect().
		Model(&ticketType).
		Relation("Options", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("sort_order ASC")
		}).
		Where("ticket_type.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ticket type %s: %w", id, err)
	}
	return &ticketType, nil
}

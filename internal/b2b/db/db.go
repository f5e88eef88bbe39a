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

// CreateOrder inserts the order, its line items and the creation history
// entry in one transaction.
func (d *DB) CreateOrder(ctx context.Context, order *models.B2BOrder, entry models.B2BOrderHistory) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if len(order.Items) > 0 {
			if _, err := tx.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
				return fmt.Errorf("insert order items: %w", err)
			}
		}
		if _, err := tx.NewInsert().Model(&entry).Exec(ctx); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
		return nil
	})
}

// GetOrderByID fetches one order with its items and full history.
func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.B2BOrder, error) {
	var order models.B2BOrder
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Items").
		Relation("History", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Where("o.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus writes the new status guarded by the expected current
// status, and appends the history entry in the same transaction. It returns
// false when the compare-and-swap missed because another actor already
// advanced the order.
func (d *DB) UpdateOrderStatus(ctx context.Context, orderID string, expected, next models.OrderStatus, entry models.B2BOrderHistory) (bool, error) {
	swapped := false
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.B2BOrder)(nil)).
			Set("status = ?", next).
			Where("id = ?", orderID).
			Where("status = ?", expected).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			// CAS miss: roll back without the history entry.
			return nil
		}
		if _, err := tx.NewInsert().Model(&entry).Exec(ctx); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
		swapped = true
		return nil
	})
	return swapped, err
}

// SetInvoiceURL stores the invoice artifact reference.
func (d *DB) SetInvoiceURL(ctx context.Context, orderID, url string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.B2BOrder)(nil)).
		Set("invoice_url = ?", url).
		Where("id = ?", orderID).
		Exec(ctx)
	return err
}

// SaveTickets persists issued ticket artifacts, replacing any previous set
// for the order. Generation is replace-not-append: a retried attempt, or one
// that loses the status race to a concurrent admin, can never leave the
// order with more tickets than it has units.
func (d *DB) SaveTickets(ctx context.Context, artifacts []models.TicketArtifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	orderID := artifacts[0].OrderID
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.TicketArtifact)(nil)).
			Where("order_id = ?", orderID).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear previous tickets: %w", err)
		}
		if _, err := tx.NewInsert().Model(&artifacts).Exec(ctx); err != nil {
			return fmt.Errorf("insert tickets: %w", err)
		}
		return nil
	})
}

// GetTicketsByOrder fetches all issued tickets for an order.
func (d *DB) GetTicketsByOrder(ctx context.Context, orderID string) ([]models.TicketArtifact, error) {
	var artifacts []models.TicketArtifact
	err := d.Bun.NewSelect().
		Model(&artifacts).
		Where("order_id = ?", orderID).
		Order("issued_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// GetHistory returns the order's transition log, oldest first.
func (d *DB) GetHistory(ctx context.Context, orderID string) ([]models.B2BOrderHistory, error) {
	var entries []models.B2BOrderHistory
	err := d.Bun.NewSelect().
		Model(&entries).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

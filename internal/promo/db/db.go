package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"festival-tickets/internal/models"
	"festival-tickets/internal/promo"
)

type DB struct {
	Bun *bun.DB
}

// FindPromo looks up an active promo record by canonicalized code. A missing
// code returns (nil, nil); the validator turns that into a not_found verdict.
func (d *DB) FindPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	var record models.PromoCode
	err := d.Bun.NewSelect().
		Model(&record).
		Where("code = ?", promo.Canonicalize(code)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find promo %q: %w", code, err)
	}
	return &record, nil
}

// IncrementUsage bumps the code's redemption counter. The increment happens
// in a single UPDATE statement so concurrent redemptions of the same code
// never lose an update.
func (d *DB) IncrementUsage(ctx context.Context, code string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.PromoCode)(nil)).
		Set("used_count = used_count + 1").
		Where("code = ?", promo.Canonicalize(code)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("increment promo usage %q: %w", code, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("increment promo usage %q: code not found", code)
	}
	return nil
}

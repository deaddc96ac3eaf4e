package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fekuna/catalog-service/internal/database"
	"github.com/fekuna/catalog-service/internal/inventory"
	"github.com/fekuna/catalog-service/internal/inventory/dto"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var adjustments = map[dto.Op]string{
	dto.SetStock: `
        UPDATE products
        SET stock_quantity = ?, updated_at = ?
        WHERE id = ? AND track_inventory = TRUE
    `,
	dto.AddStock: `
        UPDATE products
        SET stock_quantity = stock_quantity + ?, updated_at = ?
        WHERE id = ? AND track_inventory = TRUE
    `,
	dto.ReduceStock: `
        UPDATE products
        SET stock_quantity = stock_quantity - ?, updated_at = ?
        WHERE id = ? AND track_inventory = TRUE AND stock_quantity >= ?
    `,
}

type PGRepository struct {
	DB  *sqlx.DB
	ext sqlx.ExtContext
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db, ext: db}
}

func (r *PGRepository) Transaction(ctx context.Context, fn func(repo inventory.Repository) error) error {
	return database.InTx(ctx, r.DB, r.ext, func(tx sqlx.ExtContext) error {
		return fn(&PGRepository{DB: r.DB, ext: tx})
	})
}

func (r *PGRepository) Adjust(ctx context.Context, adj *dto.Adjustment) (bool, error) {
	query, ok := adjustments[adj.Op]
	if !ok {
		return false, errors.Errorf("unknown stock operation %d", adj.Op)
	}
	args := []any{adj.Quantity, time.Now().UTC(), adj.ProductID}
	if adj.Op == dto.ReduceStock {
		args = append(args, adj.Quantity)
	}

	res, err := r.ext.ExecContext(ctx, r.ext.Rebind(query), args...)
	if err != nil {
		return false, errors.Wrapf(err, "%s stock", adj.Op)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return rows == 1, nil
}

func (r *PGRepository) Level(ctx context.Context, productID int64) (*dto.Level, error) {
	var l dto.Level
	query := `SELECT id, stock_quantity, low_stock_threshold, track_inventory FROM products WHERE id = ?`
	err := sqlx.GetContext(ctx, r.ext, &l, r.ext.Rebind(query), productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find stock level")
	}
	return &l, nil
}

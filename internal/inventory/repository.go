package inventory

import (
	"context"

	"github.com/fekuna/catalog-service/internal/inventory/dto"
)

type Repository interface {
	// Adjust applies adj in one conditional statement. It reports false when
	// no row qualified: the product is missing, does not track inventory, or
	// holds less stock than a reduction asks for.
	Adjust(ctx context.Context, adj *dto.Adjustment) (bool, error)
	// Level returns nil when the product does not exist.
	Level(ctx context.Context, productID int64) (*dto.Level, error)
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

package inventory

import (
	"context"

	"github.com/fekuna/catalog-service/internal/inventory/dto"
)

type UseCase interface {
	UpdateStock(ctx context.Context, productID int64, quantity int) (*dto.Level, error)
	AddStock(ctx context.Context, productID int64, quantity int) (*dto.Level, error)
	ReduceStock(ctx context.Context, productID int64, quantity int) (*dto.Level, error)
}

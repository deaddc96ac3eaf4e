package brand

import (
	"context"

	"github.com/fekuna/catalog-service/internal/brand/dto"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
)

type Repository interface {
	Create(ctx context.Context, brand *model.Brand) error
	Update(ctx context.Context, brand *model.Brand) error
	FindByID(ctx context.Context, id int64) (*model.Brand, error)
	Find(ctx context.Context, filters *dto.BrandFilters, set selection.Set) ([]model.Brand, error)
	Count(ctx context.Context, filters *dto.BrandFilters) (int64, error)
	IsNameUnique(ctx context.Context, name string, excludeID int64) (bool, error)
	SetActive(ctx context.Context, ids []int64, active bool) (int64, error)
	// Transaction runs fn with a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

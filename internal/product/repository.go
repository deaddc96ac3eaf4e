package product

import (
	"context"

	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/product/dto"
	"github.com/fekuna/catalog-service/internal/selection"
)

type Repository interface {
	// Create and Update also rewrite the image and tag collections.
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	Find(ctx context.Context, filters *dto.ProductFilters, set selection.Set) ([]model.Product, error)
	Count(ctx context.Context, filters *dto.ProductFilters) (int64, error)

	IsSKUUnique(ctx context.Context, sku string, excludeID int64) (bool, error)
	IsSlugUnique(ctx context.Context, slug string, excludeID int64) (bool, error)
	BrandExists(ctx context.Context, id int64) (bool, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)

	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

package product

import (
	"context"

	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/product/dto"
	"github.com/fekuna/catalog-service/internal/selection"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, input *dto.ProductInput) (*model.Product, error)
	SetProductActive(ctx context.Context, id int64, active bool) (*model.Product, error)
	SetProductFeatured(ctx context.Context, id int64, featured bool) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	GetProduct(ctx context.Context, id int64, set selection.Set) (*model.Product, error)
	// GetProductBy returns nil when nothing matches.
	GetProductBy(ctx context.Context, filters *dto.ProductFilters, set selection.Set) (*model.Product, error)
	// ListProducts fails with EntityNotFound when the filters name a brand
	// or category that does not exist.
	ListProducts(ctx context.Context, filters *dto.ProductFilters, set selection.Set) ([]model.Product, error)
	GetProductStatistics(ctx context.Context) (*dto.ProductStatistics, error)
}

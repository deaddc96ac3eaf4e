package brand

import (
	"context"

	"github.com/fekuna/catalog-service/internal/brand/dto"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
)

type UseCase interface {
	CreateBrand(ctx context.Context, input *dto.BrandInput) (*model.Brand, error)
	UpdateBrand(ctx context.Context, id int64, input *dto.BrandInput) (*model.Brand, error)
	GetBrand(ctx context.Context, id int64, set selection.Set) (*model.Brand, error)
	// GetBrandByName returns nil when no brand has that name.
	GetBrandByName(ctx context.Context, name string, set selection.Set) (*model.Brand, error)
	ListBrands(ctx context.Context, filters *dto.BrandFilters, set selection.Set) ([]model.Brand, error)
	SetBrandActive(ctx context.Context, id int64, active bool) (*model.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error
	SetBrandsActive(ctx context.Context, ids []int64, active bool) (int64, error)
	GetBrandStatistics(ctx context.Context) (*dto.BrandStatistics, error)
}

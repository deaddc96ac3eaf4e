package category

import (
	"context"

	"github.com/fekuna/catalog-service/internal/category/dto"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, input *dto.CategoryInput) (*model.Category, error)
	MoveCategory(ctx context.Context, id int64, newParentID *int64) (*model.Category, error)
	SetCategoryActive(ctx context.Context, id int64, active bool) (*model.Category, error)
	UpdateSortOrder(ctx context.Context, id int64, sortOrder int) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	GetCategory(ctx context.Context, id int64, set selection.Set) (*model.Category, error)
	// GetCategoryBy returns nil when nothing matches.
	GetCategoryBy(ctx context.Context, filters *dto.CategoryFilters, set selection.Set) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters, set selection.Set) ([]model.Category, error)
	ChildCategories(ctx context.Context, parentID int64, set selection.Set) ([]model.Category, error)
	Descendants(ctx context.Context, id int64, depth int, set selection.Set) ([]model.Category, error)
	Path(ctx context.Context, id int64, set selection.Set) ([]model.Category, error)
	GetCategoryStatistics(ctx context.Context) (*dto.CategoryStatistics, error)
}

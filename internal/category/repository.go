package category

import (
	"context"

	"github.com/fekuna/catalog-service/internal/category/dto"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id int64) (*model.Category, error)
	Find(ctx context.Context, filters *dto.CategoryFilters, set selection.Set) ([]model.Category, error)
	Count(ctx context.Context, filters *dto.CategoryFilters) (int64, error)
	// ChildLinks returns the parent links of every child of parentIDs,
	// active or not, in one statement.
	ChildLinks(ctx context.Context, parentIDs []int64) ([]dto.Link, error)
	IsNameUnique(ctx context.Context, name string, excludeID int64) (bool, error)
	IsSlugUnique(ctx context.Context, slug string, excludeID int64) (bool, error)
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

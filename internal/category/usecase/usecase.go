package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/category"
	"github.com/fekuna/catalog-service/internal/category/dto"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds every ancestor walk when no limit is configured.
const DefaultMaxDepth = 64

type categoryUseCase struct {
	repo     category.Repository
	maxDepth int
	logger   logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, maxDepth int, log logger.ZapLogger) category.UseCase {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &categoryUseCase{
		repo:     repo,
		maxDepth: maxDepth,
		logger:   log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CategoryInput) (*model.Category, error) {
	c := &model.Category{
		ParentID:    input.ParentID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        strings.TrimSpace(input.Slug),
		Description: input.Description,
		ImageURL:    input.ImageURL,
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}
	c.EnsureSlug()

	err := uc.repo.Transaction(ctx, func(repo category.Repository) error {
		if c.ParentID != nil {
			parent, err := repo.FindByID(ctx, *c.ParentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return apperror.NotFound("category", *c.ParentID)
			}
		}
		if err := checkUnique(ctx, repo, c, 0); err != nil {
			return err
		}
		c.Touch(time.Now().UTC())
		return repo.Create(ctx, c)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to create category", err, zap.String("name", c.Name))
		return nil, err
	}

	uc.logger.Info("category created", zap.Int64("category_id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

// UpdateCategory replaces the editable fields. A parent given in input goes
// through the same checks as MoveCategory; no parent leaves it unchanged.
func (uc *categoryUseCase) UpdateCategory(ctx context.Context, id int64, input *dto.CategoryInput) (*model.Category, error) {
	var c *model.Category
	err := uc.repo.Transaction(ctx, func(repo category.Repository) error {
		var err error
		c, err = mustFind(ctx, repo, id)
		if err != nil {
			return err
		}

		c.Name = strings.TrimSpace(input.Name)
		c.Slug = strings.TrimSpace(input.Slug)
		c.Description = input.Description
		c.ImageURL = input.ImageURL
		c.SortOrder = input.SortOrder
		c.EnsureSlug()

		if input.ParentID != nil && !sameParent(c.ParentID, input.ParentID) {
			if err := uc.checkMove(ctx, repo, id, *input.ParentID); err != nil {
				return err
			}
			c.ParentID = input.ParentID
		}
		if err := checkUnique(ctx, repo, c, id); err != nil {
			return err
		}
		c.Touch(time.Now().UTC())
		return repo.Update(ctx, c)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to update category", err, zap.Int64("category_id", id))
		return nil, err
	}
	return c, nil
}

// MoveCategory re-parents a category, or makes it a root when newParentID
// is nil. Moving under itself or one of its descendants is rejected.
func (uc *categoryUseCase) MoveCategory(ctx context.Context, id int64, newParentID *int64) (*model.Category, error) {
	var c *model.Category
	err := uc.repo.Transaction(ctx, func(repo category.Repository) error {
		var err error
		c, err = mustFind(ctx, repo, id)
		if err != nil {
			return err
		}
		if newParentID != nil {
			if err := uc.checkMove(ctx, repo, id, *newParentID); err != nil {
				return err
			}
		}
		c.ParentID = newParentID
		c.Touch(time.Now().UTC())
		return repo.Update(ctx, c)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to move category", err, zap.Int64("category_id", id), zap.Int64p("new_parent_id", newParentID))
		return nil, err
	}

	uc.logger.Info("category moved", zap.Int64("category_id", id), zap.Int64p("parent_id", newParentID))
	return c, nil
}

// checkMove walks the ancestor chain of the candidate parent. Reaching id
// means the candidate is id itself or one of its descendants.
func (uc *categoryUseCase) checkMove(ctx context.Context, repo category.Repository, id, newParentID int64) error {
	cur, err := mustFind(ctx, repo, newParentID)
	if err != nil {
		return err
	}

	visited := make(map[int64]bool)
	for hops := 0; ; hops++ {
		if cur.ID == id {
			return apperror.NotAllowed("category", id, "Cannot move category to its own descendant")
		}
		if cur.ParentID == nil {
			return nil
		}
		if visited[cur.ID] || hops >= uc.maxDepth {
			return corrupted(cur.ID)
		}
		visited[cur.ID] = true

		next, err := repo.FindByID(ctx, *cur.ParentID)
		if err != nil {
			return err
		}
		if next == nil {
			return corrupted(cur.ID)
		}
		cur = next
	}
}

func (uc *categoryUseCase) SetCategoryActive(ctx context.Context, id int64, active bool) (*model.Category, error) {
	c, err := uc.mutate(ctx, id, func(c *model.Category) {
		if active {
			c.Activate()
		} else {
			c.Deactivate()
		}
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to change category status", err, zap.Int64("category_id", id), zap.Bool("active", active))
		return nil, err
	}
	return c, nil
}

func (uc *categoryUseCase) UpdateSortOrder(ctx context.Context, id int64, sortOrder int) (*model.Category, error) {
	c, err := uc.mutate(ctx, id, func(c *model.Category) { c.SortOrder = sortOrder })
	if err != nil {
		logger.Failure(uc.logger, "failed to update category sort order", err, zap.Int64("category_id", id))
		return nil, err
	}
	return c, nil
}

// DeleteCategory deactivates a category that has no active children.
func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int64) error {
	err := uc.repo.Transaction(ctx, func(repo category.Repository) error {
		c, err := mustFind(ctx, repo, id)
		if err != nil {
			return err
		}
		children, err := repo.Count(ctx, &dto.CategoryFilters{ParentIDs: []int64{id}})
		if err != nil {
			return err
		}
		if children > 0 {
			return apperror.NotAllowed("category", id, "Cannot delete category with active subcategories")
		}
		c.Deactivate()
		c.Touch(time.Now().UTC())
		return repo.Update(ctx, c)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to delete category", err, zap.Int64("category_id", id))
		return err
	}
	return nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id int64, set selection.Set) (*model.Category, error) {
	c, err := uc.GetCategoryBy(ctx, &dto.CategoryFilters{ID: &id, IncludeInactive: true}, set)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.NotFound("category", id)
	}
	return c, nil
}

func (uc *categoryUseCase) GetCategoryBy(ctx context.Context, filters *dto.CategoryFilters, set selection.Set) (*model.Category, error) {
	f := *filters
	f.IncludeInactive = true
	categories, err := uc.repo.Find(ctx, &f, set)
	if err != nil || len(categories) == 0 {
		return nil, err
	}
	return &categories[0], nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters, set selection.Set) ([]model.Category, error) {
	return uc.repo.Find(ctx, filters, set)
}

func (uc *categoryUseCase) ChildCategories(ctx context.Context, parentID int64, set selection.Set) ([]model.Category, error) {
	parent, err := uc.repo.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperror.NotFound("category", parentID)
	}
	return uc.repo.Find(ctx, &dto.CategoryFilters{ParentIDs: []int64{parentID}}, set)
}

// Descendants expands the subtree of id level by level, depth levels deep.
// Inactive categories are walked through but not returned. The result is
// ordered by sort order, then name.
func (uc *categoryUseCase) Descendants(ctx context.Context, id int64, depth int, set selection.Set) ([]model.Category, error) {
	if depth <= 0 {
		return nil, apperror.Validation("depth must be positive, got %d", depth)
	}
	if depth > uc.maxDepth {
		depth = uc.maxDepth
	}
	root, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, apperror.NotFound("category", id)
	}

	seen := map[int64]bool{id: true}
	level := []int64{id}
	active := []int64{}
	for d := 0; d < depth && len(level) > 0; d++ {
		links, err := uc.repo.ChildLinks(ctx, level)
		if err != nil {
			return nil, err
		}
		next := make([]int64, 0, len(links))
		for _, l := range links {
			if seen[l.ID] {
				err := corrupted(l.ID)
				logger.Failure(uc.logger, "failed to expand category subtree", err, zap.Int64("category_id", id))
				return nil, err
			}
			seen[l.ID] = true
			next = append(next, l.ID)
			if l.IsActive {
				active = append(active, l.ID)
			}
		}
		level = next
	}

	return uc.repo.Find(ctx, &dto.CategoryFilters{IDs: active}, set)
}

// Path returns the categories from the root down to id.
func (uc *categoryUseCase) Path(ctx context.Context, id int64, set selection.Set) ([]model.Category, error) {
	cur, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, apperror.NotFound("category", id)
	}

	ids := []int64{cur.ID}
	visited := map[int64]bool{cur.ID: true}
	for cur.ParentID != nil {
		if len(ids) > uc.maxDepth || visited[*cur.ParentID] {
			err := corrupted(cur.ID)
			logger.Failure(uc.logger, "failed to build category path", err, zap.Int64("category_id", id))
			return nil, err
		}
		parent, err := uc.repo.FindByID(ctx, *cur.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, corrupted(cur.ID)
		}
		visited[parent.ID] = true
		ids = append([]int64{parent.ID}, ids...)
		cur = parent
	}

	categories, err := uc.repo.Find(ctx, &dto.CategoryFilters{IDs: ids, IncludeInactive: true}, set)
	if err != nil {
		return nil, err
	}
	position := make(map[int64]int, len(ids))
	for i, cid := range ids {
		position[cid] = i
	}
	sort.Slice(categories, func(i, j int) bool {
		return position[categories[i].ID] < position[categories[j].ID]
	})
	return categories, nil
}

func (uc *categoryUseCase) GetCategoryStatistics(ctx context.Context) (*dto.CategoryStatistics, error) {
	with, without := true, false
	var stats dto.CategoryStatistics

	counts := []struct {
		dst     *int64
		filters *dto.CategoryFilters
	}{
		{&stats.TotalActive, &dto.CategoryFilters{}},
		{&stats.TotalRoot, &dto.CategoryFilters{RootsOnly: true}},
		{&stats.TotalWithProducts, &dto.CategoryFilters{HasProducts: &with}},
		{&stats.TotalWithoutProducts, &dto.CategoryFilters{HasProducts: &without}},
	}
	for _, c := range counts {
		n, err := uc.repo.Count(ctx, c.filters)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return &stats, nil
}

func (uc *categoryUseCase) mutate(ctx context.Context, id int64, apply func(c *model.Category)) (*model.Category, error) {
	var c *model.Category
	err := uc.repo.Transaction(ctx, func(repo category.Repository) error {
		var err error
		c, err = mustFind(ctx, repo, id)
		if err != nil {
			return err
		}
		apply(c)
		c.Touch(time.Now().UTC())
		return repo.Update(ctx, c)
	})
	return c, err
}

func mustFind(ctx context.Context, repo category.Repository, id int64) (*model.Category, error) {
	c, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.NotFound("category", id)
	}
	return c, nil
}

func checkUnique(ctx context.Context, repo category.Repository, c *model.Category, excludeID int64) error {
	unique, err := repo.IsNameUnique(ctx, c.Name, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return apperror.Duplicate("category", "name", c.Name)
	}
	unique, err = repo.IsSlugUnique(ctx, c.Slug, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return apperror.Duplicate("category", "slug", c.Slug)
	}
	return nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func corrupted(id int64) error {
	return apperror.Internal(errors.Errorf("parent chain of category %d does not terminate", id), "category hierarchy is corrupted")
}

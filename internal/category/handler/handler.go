package handler

import (
	"context"

	"github.com/fekuna/catalog-service/config"
	"github.com/fekuna/catalog-service/internal/category"
	"github.com/fekuna/catalog-service/internal/category/dto"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/fekuna/catalog-service/internal/selection"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	cfg    config.CatalogConfig
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, cfg config.CatalogConfig, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		cfg:    cfg,
		logger: log,
	}
}

// Register adds the category operations to r.
func (h *CategoryHandler) Register(r query.Registry) {
	r.Register("category", h.Category)
	r.Register("categoryBySlug", h.lookup("slug", func(v string) *dto.CategoryFilters { return &dto.CategoryFilters{Slug: v} }))
	r.Register("categoryByName", h.lookup("name", func(v string) *dto.CategoryFilters { return &dto.CategoryFilters{Name: v} }))
	r.Register("categories", h.Categories)
	r.Register("rootCategories", h.RootCategories)
	r.Register("childCategories", h.ChildCategories)
	r.Register("categoryHierarchy", h.CategoryHierarchy)
	r.Register("categoryPath", h.CategoryPath)
	r.Register("searchCategories", h.SearchCategories)
	r.Register("categoriesWithProducts", h.withProducts(true))
	r.Register("categoriesWithoutProducts", h.withProducts(false))
	r.Register("categoryStatistics", h.CategoryStatistics)

	r.Register("createCategory", h.CreateCategory)
	r.Register("updateCategory", h.UpdateCategory)
	r.Register("moveCategory", h.MoveCategory)
	r.Register("activateCategory", h.setActive(true))
	r.Register("deactivateCategory", h.setActive(false))
	r.Register("updateCategorySortOrder", h.UpdateCategorySortOrder)
	r.Register("deleteCategory", h.DeleteCategory)
}

func (h *CategoryHandler) Category(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *CategoryHandler) lookup(arg string, filters func(string) *dto.CategoryFilters) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		v, err := call.Args.String(arg)
		if err != nil {
			return nil, err
		}
		set := h.fields(call)
		c, err := h.uc.GetCategoryBy(ctx, filters(v), set)
		if err != nil {
			return nil, err
		}
		return query.RenderCategory(c, set), nil
	}
}

func (h *CategoryHandler) Categories(ctx context.Context, call query.Call) (any, error) {
	return h.list(ctx, call, &dto.CategoryFilters{})
}

func (h *CategoryHandler) RootCategories(ctx context.Context, call query.Call) (any, error) {
	return h.list(ctx, call, &dto.CategoryFilters{RootsOnly: true})
}

func (h *CategoryHandler) SearchCategories(ctx context.Context, call query.Call) (any, error) {
	pattern, err := call.Args.String("namePattern")
	if err != nil {
		return nil, err
	}
	return h.list(ctx, call, &dto.CategoryFilters{NamePattern: pattern, Sort: dto.SortByName})
}

func (h *CategoryHandler) withProducts(has bool) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		return h.list(ctx, call, &dto.CategoryFilters{HasProducts: &has, Sort: dto.SortByName})
	}
}

func (h *CategoryHandler) ChildCategories(ctx context.Context, call query.Call) (any, error) {
	parentID, err := call.Args.Int64("parentId")
	if err != nil {
		return nil, err
	}
	return h.many(call, func(set selection.Set) ([]model.Category, error) {
		return h.uc.ChildCategories(ctx, parentID, set)
	})
}

func (h *CategoryHandler) CategoryHierarchy(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("categoryId")
	if err != nil {
		return nil, err
	}
	depth, err := call.Args.Int("depth", h.cfg.DescendantDepth)
	if err != nil {
		return nil, err
	}
	return h.many(call, func(set selection.Set) ([]model.Category, error) {
		return h.uc.Descendants(ctx, id, depth, set)
	})
}

func (h *CategoryHandler) CategoryPath(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("categoryId")
	if err != nil {
		return nil, err
	}
	return h.many(call, func(set selection.Set) ([]model.Category, error) {
		return h.uc.Path(ctx, id, set)
	})
}

func (h *CategoryHandler) CategoryStatistics(ctx context.Context, _ query.Call) (any, error) {
	stats, err := h.uc.GetCategoryStatistics(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalActive":          stats.TotalActive,
		"totalRoot":            stats.TotalRoot,
		"totalWithProducts":    stats.TotalWithProducts,
		"totalWithoutProducts": stats.TotalWithoutProducts,
	}, nil
}

func (h *CategoryHandler) CreateCategory(ctx context.Context, call query.Call) (any, error) {
	var input dto.CategoryInput
	if err := call.Args.Decode("input", &input); err != nil {
		return nil, err
	}
	c, err := h.uc.CreateCategory(ctx, &input)
	if err != nil {
		return nil, err
	}
	return h.get(ctx, c.ID, h.fields(call))
}

func (h *CategoryHandler) UpdateCategory(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	var input dto.CategoryInput
	if err := call.Args.Decode("input", &input); err != nil {
		return nil, err
	}
	if _, err := h.uc.UpdateCategory(ctx, id, &input); err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *CategoryHandler) MoveCategory(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("categoryId")
	if err != nil {
		return nil, err
	}
	parentID, err := call.Args.OptionalInt64("newParentId")
	if err != nil {
		return nil, err
	}
	if _, err := h.uc.MoveCategory(ctx, id, parentID); err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *CategoryHandler) setActive(active bool) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		id, err := call.Args.Int64("id")
		if err != nil {
			return nil, err
		}
		if _, err := h.uc.SetCategoryActive(ctx, id, active); err != nil {
			return nil, err
		}
		return h.get(ctx, id, h.fields(call))
	}
}

func (h *CategoryHandler) UpdateCategorySortOrder(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	sortOrder, err := call.Args.Int64("sortOrder")
	if err != nil {
		return nil, err
	}
	if _, err := h.uc.UpdateSortOrder(ctx, id, int(sortOrder)); err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *CategoryHandler) DeleteCategory(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	if err := h.uc.DeleteCategory(ctx, id); err != nil {
		return nil, err
	}
	return true, nil
}

func (h *CategoryHandler) list(ctx context.Context, call query.Call, filters *dto.CategoryFilters) (any, error) {
	page, err := call.Args.Page(h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
	if err != nil {
		return nil, err
	}
	filters.Page = page
	return h.many(call, func(set selection.Set) ([]model.Category, error) {
		return h.uc.ListCategories(ctx, filters, set)
	})
}

func (h *CategoryHandler) many(call query.Call, load func(set selection.Set) ([]model.Category, error)) (any, error) {
	set := h.fields(call)
	categories, err := load(set)
	if err != nil {
		return nil, err
	}
	return query.RenderCategories(categories, set), nil
}

func (h *CategoryHandler) get(ctx context.Context, id int64, set selection.Set) (any, error) {
	c, err := h.uc.GetCategory(ctx, id, set)
	if err != nil {
		return nil, err
	}
	return query.RenderCategory(c, set), nil
}

func (h *CategoryHandler) fields(call query.Call) selection.Set {
	set := call.Select(selection.Category)
	if unknown := set.Unknown(); len(unknown) > 0 {
		h.logger.Debug("ignoring unknown fields", zap.String("operation", call.Operation), zap.Strings("fields", unknown))
	}
	return set
}

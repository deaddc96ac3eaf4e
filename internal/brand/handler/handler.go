package handler

import (
	"context"

	"github.com/fekuna/catalog-service/config"
	"github.com/fekuna/catalog-service/internal/brand"
	"github.com/fekuna/catalog-service/internal/brand/dto"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/planner"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/fekuna/catalog-service/internal/selection"
	"go.uber.org/zap"
)

const defaultRecentLimit = 10

type BrandHandler struct {
	uc     brand.UseCase
	cfg    config.CatalogConfig
	logger logger.ZapLogger
}

func NewBrandHandler(uc brand.UseCase, cfg config.CatalogConfig, log logger.ZapLogger) *BrandHandler {
	return &BrandHandler{
		uc:     uc,
		cfg:    cfg,
		logger: log,
	}
}

// Register adds the brand operations to r.
func (h *BrandHandler) Register(r query.Registry) {
	r.Register("brand", h.Brand)
	r.Register("brandByName", h.BrandByName)
	r.Register("brands", h.Brands)
	r.Register("searchBrands", h.SearchBrands)
	r.Register("brandsWithProducts", h.withProducts(true))
	r.Register("brandsWithoutProducts", h.withProducts(false))
	r.Register("recentlyCreatedBrands", h.recent(dto.SortByCreatedDesc))
	r.Register("recentlyUpdatedBrands", h.recent(dto.SortByUpdatedDesc))
	r.Register("brandStatistics", h.BrandStatistics)

	r.Register("createBrand", h.CreateBrand)
	r.Register("updateBrand", h.UpdateBrand)
	r.Register("activateBrand", h.setActive(true))
	r.Register("deactivateBrand", h.setActive(false))
	r.Register("deleteBrand", h.DeleteBrand)
	r.Register("activateBrands", h.setManyActive(true))
	r.Register("deactivateBrands", h.setManyActive(false))
}

func (h *BrandHandler) Brand(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *BrandHandler) BrandByName(ctx context.Context, call query.Call) (any, error) {
	name, err := call.Args.String("name")
	if err != nil {
		return nil, err
	}
	set := h.fields(call)
	b, err := h.uc.GetBrandByName(ctx, name, set)
	if err != nil {
		return nil, err
	}
	return query.RenderBrand(b, set), nil
}

func (h *BrandHandler) Brands(ctx context.Context, call query.Call) (any, error) {
	return h.list(ctx, call, &dto.BrandFilters{})
}

func (h *BrandHandler) SearchBrands(ctx context.Context, call query.Call) (any, error) {
	pattern, err := call.Args.String("namePattern")
	if err != nil {
		return nil, err
	}
	return h.list(ctx, call, &dto.BrandFilters{NamePattern: pattern})
}

func (h *BrandHandler) withProducts(has bool) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		return h.list(ctx, call, &dto.BrandFilters{HasProducts: &has})
	}
}

func (h *BrandHandler) recent(sort dto.Sort) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		limit, err := call.Args.Int("limit", defaultRecentLimit)
		if err != nil {
			return nil, err
		}
		page, err := planner.First(limit)
		if err != nil {
			return nil, err
		}
		set := h.fields(call)
		brands, err := h.uc.ListBrands(ctx, &dto.BrandFilters{Sort: sort, Page: page}, set)
		if err != nil {
			return nil, err
		}
		return query.RenderBrands(brands, set), nil
	}
}

func (h *BrandHandler) BrandStatistics(ctx context.Context, _ query.Call) (any, error) {
	stats, err := h.uc.GetBrandStatistics(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalActive":          stats.TotalActive,
		"totalWithProducts":    stats.TotalWithProducts,
		"totalWithoutProducts": stats.TotalWithoutProducts,
	}, nil
}

func (h *BrandHandler) CreateBrand(ctx context.Context, call query.Call) (any, error) {
	var input dto.BrandInput
	if err := call.Args.Decode("input", &input); err != nil {
		return nil, err
	}
	b, err := h.uc.CreateBrand(ctx, &input)
	if err != nil {
		return nil, err
	}
	return h.get(ctx, b.ID, h.fields(call))
}

func (h *BrandHandler) UpdateBrand(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	var input dto.BrandInput
	if err := call.Args.Decode("input", &input); err != nil {
		return nil, err
	}
	if _, err := h.uc.UpdateBrand(ctx, id, &input); err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *BrandHandler) setActive(active bool) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		id, err := call.Args.Int64("id")
		if err != nil {
			return nil, err
		}
		if _, err := h.uc.SetBrandActive(ctx, id, active); err != nil {
			return nil, err
		}
		return h.get(ctx, id, h.fields(call))
	}
}

func (h *BrandHandler) DeleteBrand(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	if err := h.uc.DeleteBrand(ctx, id); err != nil {
		return nil, err
	}
	return true, nil
}

func (h *BrandHandler) setManyActive(active bool) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		ids, err := call.Args.Int64s("ids")
		if err != nil {
			return nil, err
		}
		return h.uc.SetBrandsActive(ctx, ids, active)
	}
}

func (h *BrandHandler) list(ctx context.Context, call query.Call, filters *dto.BrandFilters) (any, error) {
	page, err := call.Args.Page(h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
	if err != nil {
		return nil, err
	}
	filters.Page = page

	set := h.fields(call)
	brands, err := h.uc.ListBrands(ctx, filters, set)
	if err != nil {
		return nil, err
	}
	return query.RenderBrands(brands, set), nil
}

func (h *BrandHandler) get(ctx context.Context, id int64, set selection.Set) (any, error) {
	b, err := h.uc.GetBrand(ctx, id, set)
	if err != nil {
		return nil, err
	}
	return query.RenderBrand(b, set), nil
}

func (h *BrandHandler) fields(call query.Call) selection.Set {
	set := call.Select(selection.Brand)
	if unknown := set.Unknown(); len(unknown) > 0 {
		h.logger.Debug("ignoring unknown fields", zap.String("operation", call.Operation), zap.Strings("fields", unknown))
	}
	return set
}

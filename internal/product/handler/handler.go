package handler

import (
	"context"

	"github.com/fekuna/catalog-service/config"
	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/planner"
	"github.com/fekuna/catalog-service/internal/product"
	"github.com/fekuna/catalog-service/internal/product/dto"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/fekuna/catalog-service/internal/selection"
	"go.uber.org/zap"
)

const defaultRecentLimit = 10

type ProductHandler struct {
	uc     product.UseCase
	cfg    config.CatalogConfig
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, cfg config.CatalogConfig, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		cfg:    cfg,
		logger: log,
	}
}

// Register adds the product operations to r.
func (h *ProductHandler) Register(r query.Registry) {
	r.Register("product", h.Product)
	r.Register("productBySlug", h.lookup("slug", func(v string) *dto.ProductFilters { return &dto.ProductFilters{Slug: v} }))
	r.Register("productBySku", h.lookup("sku", func(v string) *dto.ProductFilters { return &dto.ProductFilters{SKU: v} }))
	r.Register("products", h.Products)
	r.Register("featuredProducts", h.FeaturedProducts)
	r.Register("productsByCategory", h.byReference("categoryId", func(id int64) *dto.ProductFilters { return &dto.ProductFilters{CategoryID: &id} }))
	r.Register("productsByBrand", h.byReference("brandId", func(id int64) *dto.ProductFilters { return &dto.ProductFilters{BrandID: &id} }))
	r.Register("searchProducts", h.SearchProducts)
	r.Register("productsByPriceRange", h.ProductsByPriceRange)
	r.Register("recentProducts", h.recent(dto.SortByCreatedDesc))
	r.Register("recentlyUpdatedProducts", h.recent(dto.SortByUpdatedDesc))
	r.Register("productStatistics", h.ProductStatistics)

	r.Register("createProduct", h.CreateProduct)
	r.Register("updateProduct", h.UpdateProduct)
	r.Register("activateProduct", h.setActive(true))
	r.Register("deactivateProduct", h.setActive(false))
	r.Register("setProductFeatured", h.SetProductFeatured)
	r.Register("deleteProduct", h.DeleteProduct)
}

func (h *ProductHandler) Product(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *ProductHandler) lookup(arg string, filters func(string) *dto.ProductFilters) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		v, err := call.Args.String(arg)
		if err != nil {
			return nil, err
		}
		set := h.fields(call)
		p, err := h.uc.GetProductBy(ctx, filters(v), set)
		if err != nil {
			return nil, err
		}
		return query.RenderProduct(p, set), nil
	}
}

func (h *ProductHandler) Products(ctx context.Context, call query.Call) (any, error) {
	return h.list(ctx, call, &dto.ProductFilters{})
}

func (h *ProductHandler) FeaturedProducts(ctx context.Context, call query.Call) (any, error) {
	featured := true
	return h.list(ctx, call, &dto.ProductFilters{Featured: &featured})
}

func (h *ProductHandler) byReference(arg string, filters func(int64) *dto.ProductFilters) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		id, err := call.Args.Int64(arg)
		if err != nil {
			return nil, err
		}
		return h.list(ctx, call, filters(id))
	}
}

func (h *ProductHandler) SearchProducts(ctx context.Context, call query.Call) (any, error) {
	pattern, err := call.Args.String("namePattern")
	if err != nil {
		return nil, err
	}
	return h.list(ctx, call, &dto.ProductFilters{NamePattern: pattern})
}

func (h *ProductHandler) ProductsByPriceRange(ctx context.Context, call query.Call) (any, error) {
	minPrice, err := call.Args.Decimal("minPrice")
	if err != nil {
		return nil, err
	}
	maxPrice, err := call.Args.Decimal("maxPrice")
	if err != nil {
		return nil, err
	}
	if minPrice.GreaterThan(maxPrice) {
		return nil, apperror.Validation("minPrice %s is greater than maxPrice %s", minPrice, maxPrice)
	}
	return h.list(ctx, call, &dto.ProductFilters{MinPrice: &minPrice, MaxPrice: &maxPrice, Sort: dto.SortByPrice})
}

func (h *ProductHandler) recent(sort dto.Sort) query.Resolver {
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
		products, err := h.uc.ListProducts(ctx, &dto.ProductFilters{Sort: sort, Page: page}, set)
		if err != nil {
			return nil, err
		}
		return query.RenderProducts(products, set), nil
	}
}

func (h *ProductHandler) ProductStatistics(ctx context.Context, _ query.Call) (any, error) {
	stats, err := h.uc.GetProductStatistics(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalActive":     stats.TotalActive,
		"totalFeatured":   stats.TotalFeatured,
		"totalLowStock":   stats.TotalLowStock,
		"totalOutOfStock": stats.TotalOutOfStock,
	}, nil
}

func (h *ProductHandler) CreateProduct(ctx context.Context, call query.Call) (any, error) {
	var input dto.ProductInput
	if err := call.Args.Decode("input", &input); err != nil {
		return nil, err
	}
	p, err := h.uc.CreateProduct(ctx, &input)
	if err != nil {
		return nil, err
	}
	return h.get(ctx, p.ID, h.fields(call))
}

func (h *ProductHandler) UpdateProduct(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	var input dto.ProductInput
	if err := call.Args.Decode("input", &input); err != nil {
		return nil, err
	}
	if _, err := h.uc.UpdateProduct(ctx, id, &input); err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *ProductHandler) setActive(active bool) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		id, err := call.Args.Int64("id")
		if err != nil {
			return nil, err
		}
		if _, err := h.uc.SetProductActive(ctx, id, active); err != nil {
			return nil, err
		}
		return h.get(ctx, id, h.fields(call))
	}
}

func (h *ProductHandler) SetProductFeatured(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	featured, err := call.Args.Bool("featured")
	if err != nil {
		return nil, err
	}
	if _, err := h.uc.SetProductFeatured(ctx, id, featured); err != nil {
		return nil, err
	}
	return h.get(ctx, id, h.fields(call))
}

func (h *ProductHandler) DeleteProduct(ctx context.Context, call query.Call) (any, error) {
	id, err := call.Args.Int64("id")
	if err != nil {
		return nil, err
	}
	if err := h.uc.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}
	return true, nil
}

func (h *ProductHandler) list(ctx context.Context, call query.Call, filters *dto.ProductFilters) (any, error) {
	page, err := call.Args.Page(h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
	if err != nil {
		return nil, err
	}
	filters.Page = page

	set := h.fields(call)
	products, err := h.uc.ListProducts(ctx, filters, set)
	if err != nil {
		return nil, err
	}
	return query.RenderProducts(products, set), nil
}

func (h *ProductHandler) get(ctx context.Context, id int64, set selection.Set) (any, error) {
	p, err := h.uc.GetProduct(ctx, id, set)
	if err != nil {
		return nil, err
	}
	return query.RenderProduct(p, set), nil
}

func (h *ProductHandler) fields(call query.Call) selection.Set {
	set := call.Select(selection.Product)
	if unknown := set.Unknown(); len(unknown) > 0 {
		h.logger.Debug("ignoring unknown fields", zap.String("operation", call.Operation), zap.Strings("fields", unknown))
	}
	return set
}

package handler

import (
	"context"

	"github.com/fekuna/catalog-service/config"
	"github.com/fekuna/catalog-service/internal/inventory"
	"github.com/fekuna/catalog-service/internal/inventory/dto"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/product"
	productdto "github.com/fekuna/catalog-service/internal/product/dto"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/fekuna/catalog-service/internal/selection"
	"go.uber.org/zap"
)

// InventoryHandler serves stock mutations and stock-level listings. Results
// are rendered as products with the caller's field selection.
type InventoryHandler struct {
	uc       inventory.UseCase
	products product.UseCase
	cfg      config.CatalogConfig
	logger   logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, products product.UseCase, cfg config.CatalogConfig, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:       uc,
		products: products,
		cfg:      cfg,
		logger:   log,
	}
}

// Register adds the stock operations to r.
func (h *InventoryHandler) Register(r query.Registry) {
	r.Register("updateProductStock", h.adjust(h.uc.UpdateStock))
	r.Register("addProductStock", h.adjust(h.uc.AddStock))
	r.Register("reduceProductStock", h.adjust(h.uc.ReduceStock))

	r.Register("lowStockProducts", h.level(productdto.LowStock))
	r.Register("outOfStockProducts", h.level(productdto.OutOfStock))
	r.Register("inStockProducts", h.level(productdto.InStock))
}

type adjustFunc func(ctx context.Context, productID int64, quantity int) (*dto.Level, error)

func (h *InventoryHandler) adjust(fn adjustFunc) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		id, err := call.Args.Int64("id")
		if err != nil {
			return nil, err
		}
		quantity, err := call.Args.Int64("quantity")
		if err != nil {
			return nil, err
		}
		if _, err := fn(ctx, id, int(quantity)); err != nil {
			return nil, err
		}

		set := h.fields(call)
		p, err := h.products.GetProduct(ctx, id, set)
		if err != nil {
			return nil, err
		}
		return query.RenderProduct(p, set), nil
	}
}

func (h *InventoryHandler) level(stock productdto.StockLevel) query.Resolver {
	return func(ctx context.Context, call query.Call) (any, error) {
		page, err := call.Args.Page(h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
		if err != nil {
			return nil, err
		}
		set := h.fields(call)
		products, err := h.products.ListProducts(ctx, &productdto.ProductFilters{
			Stock: stock,
			Sort:  productdto.SortByStock,
			Page:  page,
		}, set)
		if err != nil {
			return nil, err
		}
		return query.RenderProducts(products, set), nil
	}
}

func (h *InventoryHandler) fields(call query.Call) selection.Set {
	set := call.Select(selection.Product)
	if unknown := set.Unknown(); len(unknown) > 0 {
		h.logger.Debug("ignoring unknown fields", zap.String("operation", call.Operation), zap.Strings("fields", unknown))
	}
	return set
}

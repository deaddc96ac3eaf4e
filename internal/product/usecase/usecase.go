package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/product"
	"github.com/fekuna/catalog-service/internal/product/dto"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo   product.Repository
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.ProductInput) (*model.Product, error) {
	if err := checkAmounts(input); err != nil {
		return nil, err
	}

	p := model.NewProduct(strings.TrimSpace(input.Name), input.Price)
	p.StockQuantity = input.StockQuantity
	p.IsFeatured = input.Featured
	if input.Active != nil {
		p.IsActive = *input.Active
	}
	if input.TrackInventory != nil {
		p.TrackInventory = *input.TrackInventory
	}
	apply(p, input)
	if err := checkSlug(p); err != nil {
		return nil, err
	}

	err := uc.repo.Transaction(ctx, func(repo product.Repository) error {
		if err := checkReferences(ctx, repo, input); err != nil {
			return err
		}
		if err := checkUnique(ctx, repo, p, 0); err != nil {
			return err
		}
		p.Touch(time.Now().UTC())
		return repo.Create(ctx, p)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to create product", err, zap.String("name", p.Name))
		return nil, err
	}

	uc.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// UpdateProduct replaces the descriptive fields. Stock, active and featured
// flags have their own operations; a brand or category left out of input
// stays as it is.
func (uc *productUseCase) UpdateProduct(ctx context.Context, id int64, input *dto.ProductInput) (*model.Product, error) {
	if err := checkAmounts(input); err != nil {
		return nil, err
	}

	var p *model.Product
	err := uc.repo.Transaction(ctx, func(repo product.Repository) error {
		var err error
		p, err = mustFind(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := checkReferences(ctx, repo, input); err != nil {
			return err
		}

		p.Name = strings.TrimSpace(input.Name)
		p.Price = input.Price
		p.Slug = ""
		if input.TrackInventory != nil {
			p.TrackInventory = *input.TrackInventory
		}
		apply(p, input)
		if err := checkSlug(p); err != nil {
			return err
		}

		if err := checkUnique(ctx, repo, p, id); err != nil {
			return err
		}
		p.Touch(time.Now().UTC())
		return repo.Update(ctx, p)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to update product", err, zap.Int64("product_id", id))
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) SetProductActive(ctx context.Context, id int64, active bool) (*model.Product, error) {
	p, err := uc.mutate(ctx, id, func(p *model.Product) {
		if active {
			p.Activate()
		} else {
			p.Deactivate()
		}
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to change product status", err, zap.Int64("product_id", id), zap.Bool("active", active))
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) SetProductFeatured(ctx context.Context, id int64, featured bool) (*model.Product, error) {
	p, err := uc.mutate(ctx, id, func(p *model.Product) { p.IsFeatured = featured })
	if err != nil {
		logger.Failure(uc.logger, "failed to change featured status", err, zap.Int64("product_id", id), zap.Bool("featured", featured))
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64) error {
	_, err := uc.SetProductActive(ctx, id, false)
	return err
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64, set selection.Set) (*model.Product, error) {
	p, err := uc.GetProductBy(ctx, &dto.ProductFilters{ID: &id}, set)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("product", id)
	}
	return p, nil
}

func (uc *productUseCase) GetProductBy(ctx context.Context, filters *dto.ProductFilters, set selection.Set) (*model.Product, error) {
	f := *filters
	f.IncludeInactive = true
	products, err := uc.repo.Find(ctx, &f, set)
	if err != nil || len(products) == 0 {
		return nil, err
	}
	return &products[0], nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters, set selection.Set) ([]model.Product, error) {
	if filters.CategoryID != nil {
		ok, err := uc.repo.CategoryExists(ctx, *filters.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NotFound("category", *filters.CategoryID)
		}
	}
	if filters.BrandID != nil {
		ok, err := uc.repo.BrandExists(ctx, *filters.BrandID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NotFound("brand", *filters.BrandID)
		}
	}
	return uc.repo.Find(ctx, filters, set)
}

func (uc *productUseCase) GetProductStatistics(ctx context.Context) (*dto.ProductStatistics, error) {
	featured := true
	var stats dto.ProductStatistics

	counts := []struct {
		dst     *int64
		filters *dto.ProductFilters
	}{
		{&stats.TotalActive, &dto.ProductFilters{}},
		{&stats.TotalFeatured, &dto.ProductFilters{Featured: &featured}},
		{&stats.TotalLowStock, &dto.ProductFilters{Stock: dto.LowStock}},
		{&stats.TotalOutOfStock, &dto.ProductFilters{Stock: dto.OutOfStock}},
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

func (uc *productUseCase) mutate(ctx context.Context, id int64, change func(p *model.Product)) (*model.Product, error) {
	var p *model.Product
	err := uc.repo.Transaction(ctx, func(repo product.Repository) error {
		var err error
		p, err = mustFind(ctx, repo, id)
		if err != nil {
			return err
		}
		// FindByID leaves the collections empty and Update rewrites them.
		current, err := repo.Find(ctx, &dto.ProductFilters{ID: &id, IncludeInactive: true},
			selection.Analyze(selection.Product, []string{"imageUrls", "tags"}))
		if err != nil {
			return err
		}
		if len(current) == 1 {
			p.ImageURLs = current[0].ImageURLs
			p.Tags = current[0].Tags
		}
		change(p)
		p.Touch(time.Now().UTC())
		return repo.Update(ctx, p)
	})
	return p, err
}

// apply copies the fields shared by create and update.
func apply(p *model.Product, input *dto.ProductInput) {
	p.Description = input.Description
	p.SKU = nil
	if sku := strings.TrimSpace(input.SKU); sku != "" {
		p.SKU = &sku
	}
	p.Slug = strings.TrimSpace(input.Slug)
	p.EnsureSlug()
	p.CompareAtPrice = nullDecimal(input.CompareAtPrice)
	p.Weight = nullDecimal(input.Weight)
	if input.LowStockThreshold != nil {
		p.LowStockThreshold = *input.LowStockThreshold
	}
	if unit := strings.TrimSpace(input.WeightUnit); unit != "" {
		p.WeightUnit = unit
	}
	p.ImageURLs = input.ImageURLs
	p.Tags = input.Tags
	if input.BrandID != nil {
		p.BrandID = input.BrandID
	}
	if input.CategoryID != nil {
		p.CategoryID = input.CategoryID
	}
}

func checkSlug(p *model.Product) error {
	if len(p.Slug) > model.MaxSlugLength {
		return apperror.Validation("slug cannot exceed %d characters", model.MaxSlugLength)
	}
	return nil
}

func checkAmounts(input *dto.ProductInput) error {
	if !input.Price.Equal(input.Price.Round(2)) {
		return apperror.Validation("price must have at most 2 decimal places")
	}
	if input.CompareAtPrice != nil && !input.CompareAtPrice.Equal(input.CompareAtPrice.Round(2)) {
		return apperror.Validation("compareAtPrice must have at most 2 decimal places")
	}
	if input.Weight != nil && !input.Weight.Equal(input.Weight.Round(3)) {
		return apperror.Validation("weight must have at most 3 decimal places")
	}
	return nil
}

func checkReferences(ctx context.Context, repo product.Repository, input *dto.ProductInput) error {
	if input.BrandID != nil {
		ok, err := repo.BrandExists(ctx, *input.BrandID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("brand", *input.BrandID)
		}
	}
	if input.CategoryID != nil {
		ok, err := repo.CategoryExists(ctx, *input.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("category", *input.CategoryID)
		}
	}
	return nil
}

func checkUnique(ctx context.Context, repo product.Repository, p *model.Product, excludeID int64) error {
	unique, err := repo.IsSlugUnique(ctx, p.Slug, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return apperror.Duplicate("product", "slug", p.Slug)
	}
	if p.SKU == nil {
		return nil
	}
	unique, err = repo.IsSKUUnique(ctx, *p.SKU, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return apperror.Duplicate("product", "SKU", *p.SKU)
	}
	return nil
}

func mustFind(ctx context.Context, repo product.Repository, id int64) (*model.Product, error) {
	p, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("product", id)
	}
	return p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

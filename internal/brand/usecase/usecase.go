package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/brand"
	"github.com/fekuna/catalog-service/internal/brand/dto"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
	"go.uber.org/zap"
)

type brandUseCase struct {
	repo   brand.Repository
	logger logger.ZapLogger
}

func NewBrandUseCase(repo brand.Repository, log logger.ZapLogger) brand.UseCase {
	return &brandUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *brandUseCase) CreateBrand(ctx context.Context, input *dto.BrandInput) (*model.Brand, error) {
	b := &model.Brand{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		LogoURL:     input.LogoURL,
		WebsiteURL:  input.WebsiteURL,
		IsActive:    true,
	}

	err := uc.repo.Transaction(ctx, func(repo brand.Repository) error {
		unique, err := repo.IsNameUnique(ctx, b.Name, 0)
		if err != nil {
			return err
		}
		if !unique {
			return apperror.Duplicate("brand", "name", b.Name)
		}
		b.Touch(time.Now().UTC())
		return repo.Create(ctx, b)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to create brand", err, zap.String("name", b.Name))
		return nil, err
	}

	uc.logger.Info("brand created", zap.Int64("brand_id", b.ID), zap.String("name", b.Name))
	return b, nil
}

func (uc *brandUseCase) UpdateBrand(ctx context.Context, id int64, input *dto.BrandInput) (*model.Brand, error) {
	var b *model.Brand
	err := uc.repo.Transaction(ctx, func(repo brand.Repository) error {
		var err error
		b, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return apperror.NotFound("brand", id)
		}

		name := strings.TrimSpace(input.Name)
		unique, err := repo.IsNameUnique(ctx, name, id)
		if err != nil {
			return err
		}
		if !unique {
			return apperror.Duplicate("brand", "name", name)
		}

		b.Name = name
		b.Description = input.Description
		b.LogoURL = input.LogoURL
		b.WebsiteURL = input.WebsiteURL
		b.Touch(time.Now().UTC())
		return repo.Update(ctx, b)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to update brand", err, zap.Int64("brand_id", id))
		return nil, err
	}
	return b, nil
}

func (uc *brandUseCase) GetBrand(ctx context.Context, id int64, set selection.Set) (*model.Brand, error) {
	brands, err := uc.repo.Find(ctx, &dto.BrandFilters{ID: &id, IncludeInactive: true}, set)
	if err != nil {
		return nil, err
	}
	if len(brands) == 0 {
		return nil, apperror.NotFound("brand", id)
	}
	return &brands[0], nil
}

func (uc *brandUseCase) GetBrandByName(ctx context.Context, name string, set selection.Set) (*model.Brand, error) {
	brands, err := uc.repo.Find(ctx, &dto.BrandFilters{Name: strings.TrimSpace(name), IncludeInactive: true}, set)
	if err != nil || len(brands) == 0 {
		return nil, err
	}
	return &brands[0], nil
}

func (uc *brandUseCase) ListBrands(ctx context.Context, filters *dto.BrandFilters, set selection.Set) ([]model.Brand, error) {
	return uc.repo.Find(ctx, filters, set)
}

func (uc *brandUseCase) SetBrandActive(ctx context.Context, id int64, active bool) (*model.Brand, error) {
	var b *model.Brand
	err := uc.repo.Transaction(ctx, func(repo brand.Repository) error {
		var err error
		b, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return apperror.NotFound("brand", id)
		}
		if active {
			b.Activate()
		} else {
			b.Deactivate()
		}
		b.Touch(time.Now().UTC())
		return repo.Update(ctx, b)
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to change brand status", err, zap.Int64("brand_id", id), zap.Bool("active", active))
		return nil, err
	}
	return b, nil
}

func (uc *brandUseCase) DeleteBrand(ctx context.Context, id int64) error {
	_, err := uc.SetBrandActive(ctx, id, false)
	return err
}

func (uc *brandUseCase) SetBrandsActive(ctx context.Context, ids []int64, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, apperror.Validation("Brand IDs list cannot be empty")
	}
	var n int64
	err := uc.repo.Transaction(ctx, func(repo brand.Repository) error {
		var err error
		n, err = repo.SetActive(ctx, ids, active)
		return err
	})
	if err != nil {
		logger.Failure(uc.logger, "failed to bulk change brand status", err, zap.Int("count", len(ids)))
		return 0, err
	}
	uc.logger.Info("brands status changed", zap.Int64("affected", n), zap.Bool("active", active))
	return n, nil
}

func (uc *brandUseCase) GetBrandStatistics(ctx context.Context) (*dto.BrandStatistics, error) {
	with, without := true, false

	active, err := uc.repo.Count(ctx, &dto.BrandFilters{})
	if err != nil {
		return nil, err
	}
	withProducts, err := uc.repo.Count(ctx, &dto.BrandFilters{HasProducts: &with})
	if err != nil {
		return nil, err
	}
	withoutProducts, err := uc.repo.Count(ctx, &dto.BrandFilters{HasProducts: &without})
	if err != nil {
		return nil, err
	}

	return &dto.BrandStatistics{
		TotalActive:          active,
		TotalWithProducts:    withProducts,
		TotalWithoutProducts: withoutProducts,
	}, nil
}

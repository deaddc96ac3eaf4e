package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/brand"
	"github.com/fekuna/catalog-service/internal/brand/dto"
	"github.com/fekuna/catalog-service/internal/brand/repository"
	"github.com/fekuna/catalog-service/internal/database/dbtest"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (brand.UseCase, *sqlx.DB) {
	db := dbtest.NewSQLite(t)
	return NewBrandUseCase(repository.NewPGRepository(db), logger.NewNop()), db
}

func addProduct(t *testing.T, db *sqlx.DB, brandID int64, name string, active bool) {
	now := time.Now().UTC()
	_, err := db.Exec(db.Rebind(`INSERT INTO products (brand_id, name, slug, price, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		brandID, name, name, "1.00", active, now, now)
	require.NoError(t, err)
}

func TestCreateBrandRejectsCaseInsensitiveDuplicate(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	nike, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: "Nike"})
	require.NoError(t, err)
	assert.NotZero(t, nike.ID)
	assert.True(t, nike.IsActive)

	_, err = uc.CreateBrand(ctx, &dto.BrandInput{Name: "nike"})
	require.ErrorIs(t, err, apperror.ErrDuplicate)
	ae, _ := apperror.As(err)
	assert.Equal(t, "Brand with name 'nike' already exists", ae.Message)
}

func TestUpdateBrandExcludesOwnID(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	nike, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: "Nike"})
	require.NoError(t, err)
	_, err = uc.CreateBrand(ctx, &dto.BrandInput{Name: "Adidas"})
	require.NoError(t, err)

	updated, err := uc.UpdateBrand(ctx, nike.ID, &dto.BrandInput{Name: "NIKE", Description: "Just do it"})
	require.NoError(t, err)
	assert.Equal(t, "NIKE", updated.Name)

	_, err = uc.UpdateBrand(ctx, nike.ID, &dto.BrandInput{Name: "adidas"})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	_, err = uc.UpdateBrand(ctx, 999, &dto.BrandInput{Name: "Puma"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteBrandIsSoft(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	nike, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: "Nike"})
	require.NoError(t, err)
	require.NoError(t, uc.DeleteBrand(ctx, nike.ID))

	got, err := uc.GetBrand(ctx, nike.ID, selection.All(selection.Brand))
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	listed, err := uc.ListBrands(ctx, &dto.BrandFilters{}, selection.All(selection.Brand))
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = uc.GetBrand(ctx, 404, selection.All(selection.Brand))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetBrandByName(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: "Nike"})
	require.NoError(t, err)

	got, err := uc.GetBrandByName(ctx, "NIKE", selection.All(selection.Brand))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Nike", got.Name)

	missing, err := uc.GetBrandByName(ctx, "Puma", selection.All(selection.Brand))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSearchAndPaging(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	for _, name := range []string{"Nike", "Nikon", "Adidas", "Canon"} {
		_, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: name})
		require.NoError(t, err)
	}

	found, err := uc.ListBrands(ctx, &dto.BrandFilters{NamePattern: "NIK"}, selection.All(selection.Brand))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Nike", found[0].Name)
	assert.Equal(t, "Nikon", found[1].Name)
}

func TestBulkStatusChange(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	a, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: "Nike"})
	require.NoError(t, err)
	b, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: "Adidas"})
	require.NoError(t, err)

	n, err := uc.SetBrandsActive(ctx, []int64{a.ID, b.ID}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	stats, err := uc.GetBrandStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalActive)

	_, err = uc.SetBrandsActive(ctx, nil, true)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestBrandStatistics(t *testing.T) {
	uc, db := setup(t)
	ctx := context.Background()

	nike, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: "Nike"})
	require.NoError(t, err)
	puma, err := uc.CreateBrand(ctx, &dto.BrandInput{Name: "Puma"})
	require.NoError(t, err)
	_, err = uc.CreateBrand(ctx, &dto.BrandInput{Name: "Adidas"})
	require.NoError(t, err)

	addProduct(t, db, nike.ID, "Air Max", true)
	addProduct(t, db, puma.ID, "Suede", false)

	stats, err := uc.GetBrandStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, &dto.BrandStatistics{TotalActive: 3, TotalWithProducts: 1, TotalWithoutProducts: 2}, stats)
}

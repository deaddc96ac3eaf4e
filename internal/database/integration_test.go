//go:build integration

package database_test

import (
	"context"
	"sync"
	"testing"

	"github.com/fekuna/catalog-service/internal/apperror"
	categorydto "github.com/fekuna/catalog-service/internal/category/dto"
	categoryrepo "github.com/fekuna/catalog-service/internal/category/repository"
	categoryuc "github.com/fekuna/catalog-service/internal/category/usecase"
	"github.com/fekuna/catalog-service/internal/database/dbtest"
	inventoryrepo "github.com/fekuna/catalog-service/internal/inventory/repository"
	inventoryuc "github.com/fekuna/catalog-service/internal/inventory/usecase"
	"github.com/fekuna/catalog-service/internal/logger"
	productdto "github.com/fekuna/catalog-service/internal/product/dto"
	productrepo "github.com/fekuna/catalog-service/internal/product/repository"
	productuc "github.com/fekuna/catalog-service/internal/product/usecase"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresHierarchyAndStock(t *testing.T) {
	db := dbtest.NewPostgres(t)
	log := logger.NewNop()
	ctx := context.Background()

	categories := categoryuc.NewCategoryUseCase(categoryrepo.NewPGRepository(db), 0, log)
	products := productuc.NewProductUseCase(productrepo.NewPGRepository(db), log)
	stock := inventoryuc.NewInventoryUseCase(inventoryrepo.NewPGRepository(db), log)

	root, err := categories.CreateCategory(ctx, &categorydto.CategoryInput{Name: "Electronics"})
	require.NoError(t, err)
	phones, err := categories.CreateCategory(ctx, &categorydto.CategoryInput{Name: "Phones", ParentID: &root.ID})
	require.NoError(t, err)
	android, err := categories.CreateCategory(ctx, &categorydto.CategoryInput{Name: "Android", ParentID: &phones.ID})
	require.NoError(t, err)

	_, err = categories.CreateCategory(ctx, &categorydto.CategoryInput{Name: "PHONES"})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	_, err = categories.MoveCategory(ctx, root.ID, &android.ID)
	assert.ErrorIs(t, err, apperror.ErrNotAllowed)

	set := selection.Analyze(selection.Category, []string{"name"})
	path, err := categories.Path(ctx, android.ID, set)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, "Electronics", path[0].Name)
	assert.Equal(t, "Android", path[2].Name)

	p, err := products.CreateProduct(ctx, &productdto.ProductInput{
		Name:          "Pixel",
		SKU:           "PX-1",
		Price:         decimal.RequireFromString("699.00"),
		StockQuantity: 10,
		CategoryID:    &android.ID,
		Tags:          []string{"phone", "android"},
	})
	require.NoError(t, err)

	_, err = products.CreateProduct(ctx, &productdto.ProductInput{Name: "Pixel 2", SKU: "PX-1", Price: decimal.RequireFromString("1")})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := stock.ReduceStock(ctx, p.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, succeeded)

	got, err := products.GetProduct(ctx, p.ID, selection.Analyze(selection.Product, []string{"stockQuantity", "category.name", "tags"}))
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
	assert.Equal(t, "Android", got.Category.Name)
	assert.Equal(t, []string{"phone", "android"}, got.Tags)
}

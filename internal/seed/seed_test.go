package seed

import (
	"context"
	"strings"
	"testing"

	brandrepo "github.com/fekuna/catalog-service/internal/brand/repository"
	branduc "github.com/fekuna/catalog-service/internal/brand/usecase"
	categorydto "github.com/fekuna/catalog-service/internal/category/dto"
	categoryrepo "github.com/fekuna/catalog-service/internal/category/repository"
	categoryuc "github.com/fekuna/catalog-service/internal/category/usecase"
	"github.com/fekuna/catalog-service/internal/database/dbtest"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/product"
	productdto "github.com/fekuna/catalog-service/internal/product/dto"
	productrepo "github.com/fekuna/catalog-service/internal/product/repository"
	productuc "github.com/fekuna/catalog-service/internal/product/usecase"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeder(t *testing.T) (*Seeder, product.UseCase) {
	db := dbtest.NewSQLite(t)
	log := logger.NewNop()

	products := productuc.NewProductUseCase(productrepo.NewPGRepository(db), log)
	return NewSeeder(
		branduc.NewBrandUseCase(brandrepo.NewPGRepository(db), log),
		categoryuc.NewCategoryUseCase(categoryrepo.NewPGRepository(db), 0, log),
		products,
		log,
	), products
}

func TestGenerate(t *testing.T) {
	s, products := newSeeder(t)
	ctx := context.Background()

	res, err := s.Generate(ctx, Options{Brands: 3, Categories: 8, Products: 25, Workers: 4, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, &Result{Brands: 3, Categories: 8, Products: 25}, res)

	listed, err := products.ListProducts(ctx, &productdto.ProductFilters{}, selection.Analyze(selection.Product, []string{"brand.name", "category.name"}))
	require.NoError(t, err)
	require.Len(t, listed, 25)
	for _, p := range listed {
		assert.NotNil(t, p.Brand, p.Name)
		assert.NotNil(t, p.Category, p.Name)
	}

	roots, err := s.categories.ListCategories(ctx, &categorydto.CategoryFilters{RootsOnly: true}, selection.Analyze(selection.Category, nil))
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestGenerateTwiceReportsDuplicates(t *testing.T) {
	s, _ := newSeeder(t)
	ctx := context.Background()

	_, err := s.Generate(ctx, Options{Brands: 2, Workers: 2, Seed: 1})
	require.NoError(t, err)

	res, err := s.Generate(ctx, Options{Brands: 2, Workers: 2, Seed: 1})
	require.Error(t, err)
	assert.Equal(t, 0, res.Brands)
}

func TestImportCSV(t *testing.T) {
	s, products := newSeeder(t)
	ctx := context.Background()

	data := `name,sku,description,price,stock_quantity,featured,brand,category,tags,image_urls
Hammer,H-1,Steel hammer,25.00,3,false,Acme,Tools,hand|steel,https://img.example.com/h.png
Drill,D-1,Cordless drill,99.90,12,true,acme,Tools,power,
Gift Card,,,50.00,0,false,,,,
`
	res, err := s.ImportCSV(ctx, strings.NewReader(data), 2)
	require.NoError(t, err)
	assert.Equal(t, &Result{Brands: 1, Categories: 1, Products: 3}, res)

	hammer, err := products.GetProductBy(ctx, &productdto.ProductFilters{SKU: "H-1"},
		selection.Analyze(selection.Product, []string{"price", "brand.name", "category.name", "tags", "imageUrls"}))
	require.NoError(t, err)
	require.NotNil(t, hammer)
	assert.Equal(t, "25", hammer.Price.String())
	assert.Equal(t, "Acme", hammer.Brand.Name)
	assert.Equal(t, "Tools", hammer.Category.Name)
	assert.Equal(t, []string{"hand", "steel"}, hammer.Tags)
	assert.Equal(t, []string{"https://img.example.com/h.png"}, hammer.ImageURLs)

	featured := true
	listed, err := products.ListProducts(ctx, &productdto.ProductFilters{Featured: &featured}, selection.Analyze(selection.Product, []string{"name"}))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Drill", listed[0].Name)
}

func TestImportCSVRejectsBadRows(t *testing.T) {
	s, _ := newSeeder(t)

	_, err := s.ImportCSV(context.Background(), strings.NewReader("name,price\nWidget,abc\n"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, err = s.ImportCSV(context.Background(), strings.NewReader("name,price\nW,1.00\n"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must be at least 2")
}

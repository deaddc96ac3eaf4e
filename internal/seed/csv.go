package seed

import (
	"context"
	"io"
	"strings"

	branddto "github.com/fekuna/catalog-service/internal/brand/dto"
	categorydto "github.com/fekuna/catalog-service/internal/category/dto"
	"github.com/fekuna/catalog-service/internal/metrics"
	productdto "github.com/fekuna/catalog-service/internal/product/dto"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const listSeparator = "|"

// ProductRow is one line of a product import file. Brand and category are
// referenced by name and created when missing; tags and image URLs are
// separated by "|".
type ProductRow struct {
	Name          string `csv:"name"`
	SKU           string `csv:"sku"`
	Description   string `csv:"description"`
	Price         string `csv:"price"`
	StockQuantity int    `csv:"stock_quantity"`
	Featured      bool   `csv:"featured"`
	Brand         string `csv:"brand"`
	Category      string `csv:"category"`
	Tags          string `csv:"tags"`
	ImageURLs     string `csv:"image_urls"`
}

// ImportCSV reads product rows from r and creates them with the given number
// of workers. Brands and categories are resolved first, one at a time.
func (s *Seeder) ImportCSV(ctx context.Context, r io.Reader, workers int) (*Result, error) {
	var rows []*ProductRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}

	var res Result
	brandIDs := make(map[string]int64)
	categoryIDs := make(map[string]int64)
	inputs := make([]*productdto.ProductInput, 0, len(rows))
	for i, row := range rows {
		in, err := row.input()
		if err != nil {
			return &res, errors.Wrapf(err, "row %d", i+2)
		}
		if name := strings.TrimSpace(row.Brand); name != "" {
			id, created, err := s.brandID(ctx, name, brandIDs)
			if err != nil {
				return &res, errors.Wrapf(err, "row %d", i+2)
			}
			if created {
				res.Brands++
			}
			in.BrandID = &id
		}
		if name := strings.TrimSpace(row.Category); name != "" {
			id, created, err := s.categoryID(ctx, name, categoryIDs)
			if err != nil {
				return &res, errors.Wrapf(err, "row %d", i+2)
			}
			if created {
				res.Categories++
			}
			in.CategoryID = &id
		}
		inputs = append(inputs, in)
	}
	metrics.ObserveSeeded("brand", res.Brands)
	metrics.ObserveSeeded("category", res.Categories)

	pool, err := newPool(workers)
	if err != nil {
		return &res, err
	}
	defer pool.Release()

	ids, err := run(ctx, pool, inputs, func(ctx context.Context, in *productdto.ProductInput) (int64, error) {
		p, err := s.products.CreateProduct(ctx, in)
		if err != nil {
			return 0, errors.Wrapf(err, "product %q", in.Name)
		}
		return p.ID, nil
	})
	res.Products = len(ids)
	metrics.ObserveSeeded("product", res.Products)
	if err != nil {
		return &res, err
	}

	s.logger.Info("products imported",
		zap.Int("rows", len(rows)),
		zap.Int("brands_created", res.Brands),
		zap.Int("categories_created", res.Categories))
	return &res, nil
}

func (row *ProductRow) input() (*productdto.ProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
	if err != nil {
		return nil, errors.Errorf("invalid price %q", row.Price)
	}
	in := &productdto.ProductInput{
		Name:          strings.TrimSpace(row.Name),
		SKU:           strings.TrimSpace(row.SKU),
		Description:   row.Description,
		Price:         price,
		StockQuantity: row.StockQuantity,
		Featured:      row.Featured,
		Tags:          splitList(row.Tags),
		ImageURLs:     splitList(row.ImageURLs),
	}
	if err := query.Validate(in); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Seeder) brandID(ctx context.Context, name string, cache map[string]int64) (int64, bool, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, false, nil
	}
	b, err := s.brands.GetBrandByName(ctx, name, selection.Analyze(selection.Brand, nil))
	if err != nil {
		return 0, false, err
	}
	created := false
	if b == nil {
		if b, err = s.brands.CreateBrand(ctx, &branddto.BrandInput{Name: name}); err != nil {
			return 0, false, err
		}
		created = true
	}
	cache[key] = b.ID
	return b.ID, created, nil
}

func (s *Seeder) categoryID(ctx context.Context, name string, cache map[string]int64) (int64, bool, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, false, nil
	}
	c, err := s.categories.GetCategoryBy(ctx, &categorydto.CategoryFilters{Name: name}, selection.Analyze(selection.Category, nil))
	if err != nil {
		return 0, false, err
	}
	created := false
	if c == nil {
		if c, err = s.categories.CreateCategory(ctx, &categorydto.CategoryInput{Name: name}); err != nil {
			return 0, false, err
		}
		created = true
	}
	cache[key] = c.ID
	return c.ID, created, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, listSeparator) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

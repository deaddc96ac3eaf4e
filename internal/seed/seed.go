// Package seed fills a catalog with generated or imported data. Every row is
// written through the feature usecases, so the usual validation and
// uniqueness rules apply.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/fekuna/catalog-service/internal/brand"
	branddto "github.com/fekuna/catalog-service/internal/brand/dto"
	"github.com/fekuna/catalog-service/internal/category"
	categorydto "github.com/fekuna/catalog-service/internal/category/dto"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/metrics"
	"github.com/fekuna/catalog-service/internal/product"
	productdto "github.com/fekuna/catalog-service/internal/product/dto"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const defaultWorkers = 4

type Options struct {
	Brands     int
	Categories int
	Products   int
	Workers    int
	Seed       uint64 // random source; 0 picks one
}

// Result counts the rows written per entity.
type Result struct {
	Brands     int
	Categories int
	Products   int
}

type Seeder struct {
	brands     brand.UseCase
	categories category.UseCase
	products   product.UseCase
	logger     logger.ZapLogger
}

func NewSeeder(brands brand.UseCase, categories category.UseCase, products product.UseCase, log logger.ZapLogger) *Seeder {
	return &Seeder{
		brands:     brands,
		categories: categories,
		products:   products,
		logger:     log,
	}
}

// Generate creates opts.Brands brands, then opts.Categories categories (a
// quarter of them roots, the rest spread under the roots), then
// opts.Products products attached to random brands and categories.
func (s *Seeder) Generate(ctx context.Context, opts Options) (*Result, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	pool, err := newPool(opts.Workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var res Result

	brandInputs := make([]*branddto.BrandInput, opts.Brands)
	for i := range brandInputs {
		brandInputs[i] = &branddto.BrandInput{
			Name:        fmt.Sprintf("Brand %04d", i+1),
			Description: fmt.Sprintf("Generated brand %d", i+1),
		}
	}
	brandIDs, err := run(ctx, pool, brandInputs, func(ctx context.Context, in *branddto.BrandInput) (int64, error) {
		b, err := s.brands.CreateBrand(ctx, in)
		if err != nil {
			return 0, err
		}
		return b.ID, nil
	})
	res.Brands = len(brandIDs)
	metrics.ObserveSeeded("brand", res.Brands)
	if err != nil {
		return &res, errors.Wrap(err, "seed brands")
	}

	roots := opts.Categories / 4
	if roots == 0 && opts.Categories > 0 {
		roots = 1
	}
	createCategory := func(ctx context.Context, in *categorydto.CategoryInput) (int64, error) {
		c, err := s.categories.CreateCategory(ctx, in)
		if err != nil {
			return 0, err
		}
		return c.ID, nil
	}
	rootInputs := make([]*categorydto.CategoryInput, roots)
	for i := range rootInputs {
		rootInputs[i] = &categorydto.CategoryInput{Name: fmt.Sprintf("Category %04d", i+1), SortOrder: i}
	}
	rootIDs, err := run(ctx, pool, rootInputs, createCategory)
	res.Categories = len(rootIDs)
	if err != nil {
		metrics.ObserveSeeded("category", res.Categories)
		return &res, errors.Wrap(err, "seed root categories")
	}
	childInputs := make([]*categorydto.CategoryInput, opts.Categories-roots)
	for i := range childInputs {
		parent := rootIDs[rnd.IntN(len(rootIDs))]
		childInputs[i] = &categorydto.CategoryInput{
			ParentID:  &parent,
			Name:      fmt.Sprintf("Category %04d", roots+i+1),
			SortOrder: rnd.IntN(10),
		}
	}
	childIDs, err := run(ctx, pool, childInputs, createCategory)
	res.Categories += len(childIDs)
	metrics.ObserveSeeded("category", res.Categories)
	if err != nil {
		return &res, errors.Wrap(err, "seed child categories")
	}
	categoryIDs := append(rootIDs, childIDs...)

	productInputs := make([]*productdto.ProductInput, opts.Products)
	for i := range productInputs {
		in := &productdto.ProductInput{
			Name:          fmt.Sprintf("Product %05d", i+1),
			SKU:           "SKU-" + uuid.NewString(),
			Price:         decimal.New(int64(100+rnd.IntN(99900)), -2),
			StockQuantity: rnd.IntN(100),
			Featured:      rnd.IntN(10) == 0,
			Tags:          []string{fmt.Sprintf("tag-%d", rnd.IntN(20))},
		}
		if len(brandIDs) > 0 {
			id := brandIDs[rnd.IntN(len(brandIDs))]
			in.BrandID = &id
		}
		if len(categoryIDs) > 0 {
			id := categoryIDs[rnd.IntN(len(categoryIDs))]
			in.CategoryID = &id
		}
		productInputs[i] = in
	}
	productIDs, err := run(ctx, pool, productInputs, func(ctx context.Context, in *productdto.ProductInput) (int64, error) {
		p, err := s.products.CreateProduct(ctx, in)
		if err != nil {
			return 0, err
		}
		return p.ID, nil
	})
	res.Products = len(productIDs)
	metrics.ObserveSeeded("product", res.Products)
	if err != nil {
		return &res, errors.Wrap(err, "seed products")
	}

	s.logger.Info("catalog seeded",
		zap.Uint64("seed", seed),
		zap.Int("brands", res.Brands),
		zap.Int("categories", res.Categories),
		zap.Int("products", res.Products))
	return &res, nil
}

func newPool(workers int) (*ants.Pool, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	return pool, nil
}

// run submits one task per input and waits for all of them. It returns the
// ids of the successful tasks in input order and every failure combined.
func run[T any](ctx context.Context, pool *ants.Pool, inputs []T, create func(context.Context, T) (int64, error)) ([]int64, error) {
	ids := make([]int64, len(inputs))
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			id, err := create(ctx, in)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return
			}
			ids[i] = id
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = multierr.Append(errs, errors.Wrap(err, "submit task"))
			mu.Unlock()
		}
	}
	wg.Wait()

	out := ids[:0]
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out, errs
}

package planner

import (
	"context"
	"fmt"

	"github.com/fekuna/catalog-service/internal/metrics"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Runner is satisfied by both *sqlx.DB and *sqlx.Tx.
type Runner interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// Fetcher executes plans. Every relation is resolved with at most one
// statement per nesting level, whatever the number of parent rows.
type Fetcher struct {
	db Runner
}

func NewFetcher(db Runner) *Fetcher {
	return &Fetcher{db: db}
}

func (f *Fetcher) Brands(ctx context.Context, req Request) ([]model.Brand, Plan, error) {
	plan := Build(req)
	var brands []model.Brand
	if err := f.selectPlan(ctx, plan, &brands); err != nil {
		return nil, plan, err
	}
	if err := f.attachBrands(ctx, refs(brands), plan.Set, plan.Loads); err != nil {
		return nil, plan, err
	}
	return brands, plan, nil
}

func (f *Fetcher) Categories(ctx context.Context, req Request) ([]model.Category, Plan, error) {
	plan := Build(req)
	var rows []categoryRow
	if err := f.selectPlan(ctx, plan, &rows); err != nil {
		return nil, plan, err
	}
	categories := make([]model.Category, len(rows))
	for i, r := range rows {
		categories[i] = r.toModel()
	}

	if err := f.attachCategories(ctx, refs(categories), plan.Set, plan.Loads); err != nil {
		return nil, plan, err
	}
	for _, j := range plan.Joins {
		if j.Set.Relations() == 0 {
			continue
		}
		var parents []*model.Category
		for i := range categories {
			if categories[i].Parent != nil {
				parents = append(parents, categories[i].Parent)
			}
		}
		if err := f.attachCategories(ctx, parents, j.Set, j.Set.Relations()); err != nil {
			return nil, plan, err
		}
	}
	return categories, plan, nil
}

func (f *Fetcher) Products(ctx context.Context, req Request) ([]model.Product, Plan, error) {
	plan := Build(req)
	var rows []productRow
	if err := f.selectPlan(ctx, plan, &rows); err != nil {
		return nil, plan, err
	}
	products := make([]model.Product, len(rows))
	for i, r := range rows {
		products[i] = r.toModel()
	}

	if err := f.attachProducts(ctx, refs(products), plan.Loads); err != nil {
		return nil, plan, err
	}
	for _, j := range plan.Joins {
		if j.Set.Relations() == 0 {
			continue
		}
		switch j.Relation {
		case selection.RelBrand:
			var brands []*model.Brand
			for i := range products {
				if products[i].Brand != nil {
					brands = append(brands, products[i].Brand)
				}
			}
			if err := f.attachBrands(ctx, brands, j.Set, j.Set.Relations()); err != nil {
				return nil, plan, err
			}
		case selection.RelCategory:
			var categories []*model.Category
			for i := range products {
				if products[i].Category != nil {
					categories = append(categories, products[i].Category)
				}
			}
			if err := f.attachCategories(ctx, categories, j.Set, j.Set.Relations()); err != nil {
				return nil, plan, err
			}
		}
	}
	return products, plan, nil
}

// Count returns the number of rows matching the request's filter.
func (f *Fetcher) Count(ctx context.Context, req Request) (int64, error) {
	query, args := Build(req).CountSQL()
	var n int64
	if err := sqlx.GetContext(ctx, f.db, &n, f.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrapf(err, "count %s", req.Set.Schema().Entity)
	}
	return n, nil
}

func (f *Fetcher) selectPlan(ctx context.Context, plan Plan, dest any) error {
	query, args := plan.SQL()
	metrics.ObservePlan(plan.Schema.Entity, plan.Strategy.String())
	if err := sqlx.SelectContext(ctx, f.db, dest, f.db.Rebind(query), args...); err != nil {
		return errors.Wrapf(err, "fetch %s", plan.Schema.Entity)
	}
	return nil
}

func (f *Fetcher) attachBrands(ctx context.Context, brands []*model.Brand, set selection.Set, loads selection.Relation) error {
	if len(brands) == 0 || !loads.Has(selection.RelProducts) {
		return nil
	}
	ids := make([]int64, 0, len(brands))
	for _, b := range brands {
		ids = append(ids, b.ID)
	}
	products, _, err := f.Products(ctx, Request{
		Set:   set.Nested(selection.RelProducts),
		Where: Where().In("brand_id", distinct(ids)).Active(),
		Extra: []string{"brand_id"},
	})
	if err != nil {
		return err
	}
	byBrand := make(map[int64][]model.Product)
	for _, p := range products {
		if p.BrandID != nil {
			byBrand[*p.BrandID] = append(byBrand[*p.BrandID], p)
		}
	}
	for _, b := range brands {
		b.Products = byBrand[b.ID]
	}
	return nil
}

func (f *Fetcher) attachCategories(ctx context.Context, categories []*model.Category, set selection.Set, loads selection.Relation) error {
	if len(categories) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	ids = distinct(ids)

	if loads.Has(selection.RelParent) {
		var parentIDs []int64
		for _, c := range categories {
			if c.ParentID != nil {
				parentIDs = append(parentIDs, *c.ParentID)
			}
		}
		if len(parentIDs) > 0 {
			parents, _, err := f.Categories(ctx, Request{
				Set:   set.Nested(selection.RelParent),
				Where: Where().In("id", distinct(parentIDs)),
			})
			if err != nil {
				return err
			}
			byID := make(map[int64]model.Category, len(parents))
			for _, p := range parents {
				byID[p.ID] = p
			}
			for _, c := range categories {
				if c.ParentID == nil {
					continue
				}
				if p, ok := byID[*c.ParentID]; ok {
					c.Parent = &p
				}
			}
		}
	}

	if loads.Has(selection.RelChildren) {
		children, _, err := f.Categories(ctx, Request{
			Set:   set.Nested(selection.RelChildren),
			Where: Where().In("parent_id", ids).Active(),
			Order: []Order{Asc("sort_order"), Asc("name")},
			Extra: []string{"parent_id"},
		})
		if err != nil {
			return err
		}
		byParent := make(map[int64][]model.Category)
		for _, ch := range children {
			if ch.ParentID != nil {
				byParent[*ch.ParentID] = append(byParent[*ch.ParentID], ch)
			}
		}
		for _, c := range categories {
			c.Children = byParent[c.ID]
		}
	}

	if loads.Has(selection.RelProducts) {
		products, _, err := f.Products(ctx, Request{
			Set:   set.Nested(selection.RelProducts),
			Where: Where().In("category_id", ids).Active(),
			Extra: []string{"category_id"},
		})
		if err != nil {
			return err
		}
		byCategory := make(map[int64][]model.Product)
		for _, p := range products {
			if p.CategoryID != nil {
				byCategory[*p.CategoryID] = append(byCategory[*p.CategoryID], p)
			}
		}
		for _, c := range categories {
			c.Products = byCategory[c.ID]
		}
	}
	return nil
}

func (f *Fetcher) attachProducts(ctx context.Context, products []*model.Product, loads selection.Relation) error {
	if len(products) == 0 || !loads.Has(selection.RelImageURLs|selection.RelTags) {
		return nil
	}
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	ids = distinct(ids)

	if loads.Has(selection.RelImageURLs) {
		images, err := f.loadCollection(ctx, "product_images", "image_url", ids)
		if err != nil {
			return err
		}
		for _, p := range products {
			p.ImageURLs = images[p.ID]
		}
	}
	if loads.Has(selection.RelTags) {
		tags, err := f.loadCollection(ctx, "product_tags", "tag", ids)
		if err != nil {
			return err
		}
		for _, p := range products {
			p.Tags = tags[p.ID]
		}
	}
	return nil
}

func (f *Fetcher) loadCollection(ctx context.Context, table, column string, ids []int64) (map[int64][]string, error) {
	query, args, err := sqlx.In(fmt.Sprintf(
		"SELECT product_id, %s AS value FROM %s WHERE product_id IN (?) ORDER BY product_id, position",
		column, table), ids)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s query", table)
	}
	var rows []collectionRow
	if err := sqlx.SelectContext(ctx, f.db, &rows, f.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrapf(err, "load %s", table)
	}
	out := make(map[int64][]string, len(ids))
	for _, r := range rows {
		out[r.ProductID] = append(out[r.ProductID], r.Value)
	}
	return out, nil
}

func refs[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

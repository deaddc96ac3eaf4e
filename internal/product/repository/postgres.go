package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/database"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/planner"
	"github.com/fekuna/catalog-service/internal/product"
	"github.com/fekuna/catalog-service/internal/product/dto"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	lowStock   = planner.TableRef + ".track_inventory = TRUE AND " + planner.TableRef + ".stock_quantity <= " + planner.TableRef + ".low_stock_threshold"
	outOfStock = planner.TableRef + ".track_inventory = TRUE AND " + planner.TableRef + ".stock_quantity = 0"
	inStock    = "(" + planner.TableRef + ".track_inventory = FALSE OR " + planner.TableRef + ".stock_quantity > 0)"
)

var sortOrders = map[dto.Sort][]planner.Order{
	dto.SortByName:        {planner.Asc("name")},
	dto.SortByPrice:       {planner.Asc("price"), planner.Asc("name")},
	dto.SortByStock:       {planner.Asc("stock_quantity"), planner.Asc("name")},
	dto.SortByCreatedDesc: {planner.Desc("created_at")},
	dto.SortByUpdatedDesc: {planner.Desc("updated_at")},
}

// collectionItem is one row of product_images or product_tags.
type collectionItem struct {
	ProductID int64  `db:"product_id"`
	Position  int    `db:"position"`
	Value     string `db:"value"`
}

type PGRepository struct {
	DB  *sqlx.DB
	ext sqlx.ExtContext
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db, ext: db}
}

func (r *PGRepository) Transaction(ctx context.Context, fn func(repo product.Repository) error) error {
	return database.InTx(ctx, r.DB, r.ext, func(tx sqlx.ExtContext) error {
		return fn(&PGRepository{DB: r.DB, ext: tx})
	})
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	return r.Transaction(ctx, func(repo product.Repository) error {
		tx := repo.(*PGRepository)
		query := `
            INSERT INTO products (
                brand_id, category_id, name, description, sku, slug, price, compare_at_price,
                stock_quantity, low_stock_threshold, weight, weight_unit,
                is_active, is_featured, track_inventory, created_at, updated_at
            )
            VALUES (
                :brand_id, :category_id, :name, :description, :sku, :slug, :price, :compare_at_price,
                :stock_quantity, :low_stock_threshold, :weight, :weight_unit,
                :is_active, :is_featured, :track_inventory, :created_at, :updated_at
            )
            RETURNING id
        `
		rows, err := sqlx.NamedQueryContext(ctx, tx.ext, query, p)
		if err != nil {
			return writeErr(err, p, "insert product")
		}
		if rows.Next() {
			if err := rows.Scan(&p.ID); err != nil {
				rows.Close()
				return errors.Wrap(err, "scan product id")
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return writeErr(err, p, "insert product")
		}
		return tx.writeCollections(ctx, p)
	})
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	return r.Transaction(ctx, func(repo product.Repository) error {
		tx := repo.(*PGRepository)
		query := `
            UPDATE products
            SET brand_id = :brand_id,
                category_id = :category_id,
                name = :name,
                description = :description,
                sku = :sku,
                slug = :slug,
                price = :price,
                compare_at_price = :compare_at_price,
                stock_quantity = :stock_quantity,
                low_stock_threshold = :low_stock_threshold,
                weight = :weight,
                weight_unit = :weight_unit,
                is_active = :is_active,
                is_featured = :is_featured,
                track_inventory = :track_inventory,
                updated_at = :updated_at
            WHERE id = :id
        `
		if _, err := sqlx.NamedExecContext(ctx, tx.ext, query, p); err != nil {
			return writeErr(err, p, "update product")
		}
		return tx.writeCollections(ctx, p)
	})
}

// writeCollections replaces the stored images and tags of p, keeping their
// order in the position column.
func (r *PGRepository) writeCollections(ctx context.Context, p *model.Product) error {
	collections := []struct {
		table  string
		column string
		values []string
	}{
		{"product_images", "image_url", p.ImageURLs},
		{"product_tags", "tag", p.Tags},
	}
	for _, c := range collections {
		del := r.ext.Rebind(`DELETE FROM ` + c.table + ` WHERE product_id = ?`)
		if _, err := r.ext.ExecContext(ctx, del, p.ID); err != nil {
			return errors.Wrapf(err, "clear %s", c.table)
		}
		if len(c.values) == 0 {
			continue
		}
		items := make([]collectionItem, len(c.values))
		for i, v := range c.values {
			items[i] = collectionItem{ProductID: p.ID, Position: i, Value: v}
		}
		ins := `INSERT INTO ` + c.table + ` (product_id, position, ` + c.column + `) VALUES (:product_id, :position, :value)`
		if _, err := sqlx.NamedExecContext(ctx, r.ext, ins, items); err != nil {
			return errors.Wrapf(err, "insert %s", c.table)
		}
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := sqlx.GetContext(ctx, r.ext, &p, r.ext.Rebind(`SELECT * FROM products WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find product")
	}
	return &p, nil
}

func (r *PGRepository) Find(ctx context.Context, f *dto.ProductFilters, set selection.Set) ([]model.Product, error) {
	products, _, err := planner.NewFetcher(r.ext).Products(ctx, request(f, set))
	return products, err
}

func (r *PGRepository) Count(ctx context.Context, f *dto.ProductFilters) (int64, error) {
	return planner.NewFetcher(r.ext).Count(ctx, request(f, selection.All(selection.Product)))
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, sku string, excludeID int64) (bool, error) {
	return r.isUnique(ctx, `SELECT count(*) FROM products WHERE sku = ?`, sku, excludeID)
}

func (r *PGRepository) IsSlugUnique(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return r.isUnique(ctx, `SELECT count(*) FROM products WHERE slug = ?`, slug, excludeID)
}

func (r *PGRepository) isUnique(ctx context.Context, query string, value string, excludeID int64) (bool, error) {
	var count int
	args := []any{value}
	if excludeID != 0 {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	if err := sqlx.GetContext(ctx, r.ext, &count, r.ext.Rebind(query), args...); err != nil {
		return false, errors.Wrap(err, "check product uniqueness")
	}
	return count == 0, nil
}

func (r *PGRepository) BrandExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT count(*) FROM brands WHERE id = ?`, id)
}

func (r *PGRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT count(*) FROM categories WHERE id = ?`, id)
}

func (r *PGRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.ext, &count, r.ext.Rebind(query), id); err != nil {
		return false, errors.Wrap(err, "check reference")
	}
	return count > 0, nil
}

func writeErr(err error, p *model.Product, op string) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		if strings.Contains(database.UniqueViolationTarget(err), "sku") && p.SKU != nil {
			return apperror.Duplicate("product", "SKU", *p.SKU)
		}
		return apperror.Duplicate("product", "slug", p.Slug)
	}
	return errors.Wrap(err, op)
}

func request(f *dto.ProductFilters, set selection.Set) planner.Request {
	if f == nil {
		f = &dto.ProductFilters{}
	}
	where := planner.Where()
	if f.ID != nil {
		where.Eq("id", *f.ID)
	}
	if f.Slug != "" {
		where.Eq("slug", f.Slug)
	}
	if f.SKU != "" {
		where.Eq("sku", f.SKU)
	}
	if f.BrandID != nil {
		where.Eq("brand_id", *f.BrandID)
	}
	if f.CategoryID != nil {
		where.Eq("category_id", *f.CategoryID)
	}
	if f.NamePattern != "" {
		where.Contains("name", f.NamePattern)
	}
	if f.Featured != nil {
		if *f.Featured {
			where.IsTrue("is_featured")
		} else {
			where.IsFalse("is_featured")
		}
	}
	if f.MinPrice != nil {
		where.Gte("price", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where.Lte("price", *f.MaxPrice)
	}
	switch f.Stock {
	case dto.LowStock:
		where.Expr(lowStock)
	case dto.OutOfStock:
		where.Expr(outOfStock)
	case dto.InStock:
		where.Expr(inStock)
	}
	if !f.IncludeInactive {
		where.Active()
	}
	return planner.Request{
		Set:   set,
		Where: where,
		Order: sortOrders[f.Sort],
		Page:  f.Page,
	}
}

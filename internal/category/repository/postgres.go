package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/category"
	"github.com/fekuna/catalog-service/internal/category/dto"
	"github.com/fekuna/catalog-service/internal/database"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/planner"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const hasActiveProducts = "EXISTS (SELECT 1 FROM products pr WHERE pr.category_id = " + planner.TableRef + ".id AND pr.is_active = TRUE)"

var sortOrders = map[dto.Sort][]planner.Order{
	dto.SortByPosition: {planner.Asc("sort_order"), planner.Asc("name")},
	dto.SortByName:     {planner.Asc("name")},
}

type PGRepository struct {
	DB  *sqlx.DB
	ext sqlx.ExtContext
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db, ext: db}
}

func (r *PGRepository) Transaction(ctx context.Context, fn func(repo category.Repository) error) error {
	return database.InTx(ctx, r.DB, r.ext, func(tx sqlx.ExtContext) error {
		return fn(&PGRepository{DB: r.DB, ext: tx})
	})
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (parent_id, name, slug, description, image_url, sort_order, is_active, created_at, updated_at)
        VALUES (:parent_id, :name, :slug, :description, :image_url, :sort_order, :is_active, :created_at, :updated_at)
        RETURNING id
    `
	rows, err := sqlx.NamedQueryContext(ctx, r.ext, query, c)
	if err != nil {
		return writeErr(err, c, "insert category")
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&c.ID); err != nil {
			return errors.Wrap(err, "scan category id")
		}
	}
	return writeErr(rows.Err(), c, "insert category")
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            slug = :slug,
            description = :description,
            image_url = :image_url,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, c)
	return writeErr(err, c, "update category")
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := sqlx.GetContext(ctx, r.ext, &c, r.ext.Rebind(`SELECT * FROM categories WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find category")
	}
	return &c, nil
}

func (r *PGRepository) Find(ctx context.Context, f *dto.CategoryFilters, set selection.Set) ([]model.Category, error) {
	categories, _, err := planner.NewFetcher(r.ext).Categories(ctx, request(f, set))
	return categories, err
}

func (r *PGRepository) Count(ctx context.Context, f *dto.CategoryFilters) (int64, error) {
	return planner.NewFetcher(r.ext).Count(ctx, request(f, selection.All(selection.Category)))
}

func (r *PGRepository) ChildLinks(ctx context.Context, parentIDs []int64) ([]dto.Link, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, parent_id, is_active FROM categories WHERE parent_id IN (?)`, parentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "build child query")
	}
	var links []dto.Link
	if err := sqlx.SelectContext(ctx, r.ext, &links, r.ext.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "find child categories")
	}
	return links, nil
}

func (r *PGRepository) IsNameUnique(ctx context.Context, name string, excludeID int64) (bool, error) {
	return r.isUnique(ctx, `SELECT count(*) FROM categories WHERE LOWER(name) = LOWER(?)`, name, excludeID)
}

func (r *PGRepository) IsSlugUnique(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return r.isUnique(ctx, `SELECT count(*) FROM categories WHERE slug = ?`, slug, excludeID)
}

func (r *PGRepository) isUnique(ctx context.Context, query string, value string, excludeID int64) (bool, error) {
	var count int
	args := []any{value}
	if excludeID != 0 {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	if err := sqlx.GetContext(ctx, r.ext, &count, r.ext.Rebind(query), args...); err != nil {
		return false, errors.Wrap(err, "check category uniqueness")
	}
	return count == 0, nil
}

func writeErr(err error, c *model.Category, op string) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		if strings.Contains(database.UniqueViolationTarget(err), "slug") {
			return apperror.Duplicate("category", "slug", c.Slug)
		}
		return apperror.Duplicate("category", "name", c.Name)
	}
	return errors.Wrap(err, op)
}

func request(f *dto.CategoryFilters, set selection.Set) planner.Request {
	if f == nil {
		f = &dto.CategoryFilters{}
	}
	where := planner.Where()
	if f.ID != nil {
		where.Eq("id", *f.ID)
	}
	if f.IDs != nil {
		where.In("id", f.IDs)
	}
	if f.Slug != "" {
		where.Eq("slug", f.Slug)
	}
	if f.Name != "" {
		where.EqFold("name", f.Name)
	}
	if f.NamePattern != "" {
		where.Contains("name", f.NamePattern)
	}
	if f.ParentIDs != nil {
		where.In("parent_id", f.ParentIDs)
	}
	if f.RootsOnly {
		where.IsNull("parent_id")
	}
	if !f.IncludeInactive {
		where.Active()
	}
	if f.HasProducts != nil {
		if *f.HasProducts {
			where.Expr(hasActiveProducts)
		} else {
			where.Expr("NOT " + hasActiveProducts)
		}
	}
	return planner.Request{
		Set:   set,
		Where: where,
		Order: sortOrders[f.Sort],
		Page:  f.Page,
	}
}

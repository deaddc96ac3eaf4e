package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/brand"
	"github.com/fekuna/catalog-service/internal/brand/dto"
	"github.com/fekuna/catalog-service/internal/database"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/planner"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const hasActiveProducts = "EXISTS (SELECT 1 FROM products pr WHERE pr.brand_id = " + planner.TableRef + ".id AND pr.is_active = TRUE)"

var sortOrders = map[dto.Sort][]planner.Order{
	dto.SortByName:        {planner.Asc("name")},
	dto.SortByCreatedDesc: {planner.Desc("created_at")},
	dto.SortByUpdatedDesc: {planner.Desc("updated_at")},
}

type PGRepository struct {
	DB  *sqlx.DB
	ext sqlx.ExtContext
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db, ext: db}
}

func (r *PGRepository) Transaction(ctx context.Context, fn func(repo brand.Repository) error) error {
	return database.InTx(ctx, r.DB, r.ext, func(tx sqlx.ExtContext) error {
		return fn(&PGRepository{DB: r.DB, ext: tx})
	})
}

func (r *PGRepository) Create(ctx context.Context, b *model.Brand) error {
	query := `
        INSERT INTO brands (name, description, logo_url, website_url, is_active, created_at, updated_at)
        VALUES (:name, :description, :logo_url, :website_url, :is_active, :created_at, :updated_at)
        RETURNING id
    `
	rows, err := sqlx.NamedQueryContext(ctx, r.ext, query, b)
	if err != nil {
		return r.writeErr(err, b, "insert brand")
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&b.ID); err != nil {
			return errors.Wrap(err, "scan brand id")
		}
	}
	return r.writeErr(rows.Err(), b, "insert brand")
}

func (r *PGRepository) Update(ctx context.Context, b *model.Brand) error {
	query := `
        UPDATE brands
        SET name = :name,
            description = :description,
            logo_url = :logo_url,
            website_url = :website_url,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, b)
	return r.writeErr(err, b, "update brand")
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Brand, error) {
	var b model.Brand
	err := sqlx.GetContext(ctx, r.ext, &b, r.ext.Rebind(`SELECT * FROM brands WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find brand")
	}
	return &b, nil
}

func (r *PGRepository) Find(ctx context.Context, f *dto.BrandFilters, set selection.Set) ([]model.Brand, error) {
	brands, _, err := planner.NewFetcher(r.ext).Brands(ctx, request(f, set))
	return brands, err
}

func (r *PGRepository) Count(ctx context.Context, f *dto.BrandFilters) (int64, error) {
	return planner.NewFetcher(r.ext).Count(ctx, request(f, selection.All(selection.Brand)))
}

func (r *PGRepository) IsNameUnique(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	query := `SELECT count(*) FROM brands WHERE LOWER(name) = LOWER(?)`
	args := []any{name}
	if excludeID != 0 {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}

	if err := sqlx.GetContext(ctx, r.ext, &count, r.ext.Rebind(query), args...); err != nil {
		return false, errors.Wrap(err, "check brand name")
	}
	return count == 0, nil
}

func (r *PGRepository) SetActive(ctx context.Context, ids []int64, active bool) (int64, error) {
	query, args, err := sqlx.In(`UPDATE brands SET is_active = ?, updated_at = ? WHERE id IN (?)`,
		active, time.Now().UTC(), ids)
	if err != nil {
		return 0, errors.Wrap(err, "build bulk update")
	}
	res, err := r.ext.ExecContext(ctx, r.ext.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "bulk update brands")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "bulk update brands")
}

func (r *PGRepository) writeErr(err error, b *model.Brand, op string) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		return apperror.Duplicate("brand", "name", b.Name)
	}
	return errors.Wrap(err, op)
}

func request(f *dto.BrandFilters, set selection.Set) planner.Request {
	if f == nil {
		f = &dto.BrandFilters{}
	}
	where := planner.Where()
	if f.ID != nil {
		where.Eq("id", *f.ID)
	}
	if f.Name != "" {
		where.EqFold("name", f.Name)
	}
	if f.NamePattern != "" {
		where.Contains("name", f.NamePattern)
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

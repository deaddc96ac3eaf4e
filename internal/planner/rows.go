package planner

import (
	"database/sql"

	"github.com/fekuna/catalog-service/internal/model"
)

// brandRef and categoryRef receive LEFT JOIN columns, which are NULL when
// the relation is absent.
type brandRef struct {
	ID          sql.NullInt64  `db:"id"`
	Name        sql.NullString `db:"name"`
	Description sql.NullString `db:"description"`
	LogoURL     sql.NullString `db:"logo_url"`
	WebsiteURL  sql.NullString `db:"website_url"`
	IsActive    sql.NullBool   `db:"is_active"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

func (r brandRef) toModel() *model.Brand {
	if !r.ID.Valid {
		return nil
	}
	b := &model.Brand{
		Name:        r.Name.String,
		Description: r.Description.String,
		LogoURL:     r.LogoURL.String,
		WebsiteURL:  r.WebsiteURL.String,
		IsActive:    r.IsActive.Bool,
	}
	b.ID = r.ID.Int64
	b.CreatedAt = r.CreatedAt.Time
	b.UpdatedAt = r.UpdatedAt.Time
	return b
}

type categoryRef struct {
	ID          sql.NullInt64  `db:"id"`
	ParentID    sql.NullInt64  `db:"parent_id"`
	Name        sql.NullString `db:"name"`
	Slug        sql.NullString `db:"slug"`
	Description sql.NullString `db:"description"`
	ImageURL    sql.NullString `db:"image_url"`
	SortOrder   sql.NullInt64  `db:"sort_order"`
	IsActive    sql.NullBool   `db:"is_active"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

func (r categoryRef) toModel() *model.Category {
	if !r.ID.Valid {
		return nil
	}
	c := &model.Category{
		Name:        r.Name.String,
		Slug:        r.Slug.String,
		Description: r.Description.String,
		ImageURL:    r.ImageURL.String,
		SortOrder:   int(r.SortOrder.Int64),
		IsActive:    r.IsActive.Bool,
	}
	if r.ParentID.Valid {
		pid := r.ParentID.Int64
		c.ParentID = &pid
	}
	c.ID = r.ID.Int64
	c.CreatedAt = r.CreatedAt.Time
	c.UpdatedAt = r.UpdatedAt.Time
	return c
}

type productRow struct {
	model.Product
	JoinedBrand    brandRef    `db:"brand"`
	JoinedCategory categoryRef `db:"category"`
}

func (r productRow) toModel() model.Product {
	p := r.Product
	p.Brand = r.JoinedBrand.toModel()
	p.Category = r.JoinedCategory.toModel()
	return p
}

type categoryRow struct {
	model.Category
	JoinedParent categoryRef `db:"parent"`
}

func (r categoryRow) toModel() model.Category {
	c := r.Category
	c.Parent = r.JoinedParent.toModel()
	return c
}

type collectionRow struct {
	ProductID int64  `db:"product_id"`
	Value     string `db:"value"`
}

package query

import (
	"time"

	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/shopspring/decimal"
)

// The Render functions emit only the fields of the selection set. Output
// values are restricted to the types structpb accepts.

func RenderBrand(b *model.Brand, set selection.Set) any {
	if b == nil {
		return nil
	}
	out := make(map[string]any)
	for _, f := range set.Fields() {
		switch f {
		case "id":
			out[f] = b.ID
		case "name":
			out[f] = b.Name
		case "description":
			out[f] = b.Description
		case "logoUrl":
			out[f] = b.LogoURL
		case "websiteUrl":
			out[f] = b.WebsiteURL
		case "active":
			out[f] = b.IsActive
		case "createdAt":
			out[f] = timestamp(b.CreatedAt)
		case "updatedAt":
			out[f] = timestamp(b.UpdatedAt)
		}
	}
	if set.Wants(selection.RelProducts) {
		out["products"] = RenderProducts(b.Products, set.Nested(selection.RelProducts))
	}
	return out
}

func RenderBrands(brands []model.Brand, set selection.Set) []any {
	out := make([]any, len(brands))
	for i := range brands {
		out[i] = RenderBrand(&brands[i], set)
	}
	return out
}

func RenderCategory(c *model.Category, set selection.Set) any {
	if c == nil {
		return nil
	}
	out := make(map[string]any)
	for _, f := range set.Fields() {
		switch f {
		case "id":
			out[f] = c.ID
		case "name":
			out[f] = c.Name
		case "slug":
			out[f] = c.Slug
		case "description":
			out[f] = c.Description
		case "imageUrl":
			out[f] = c.ImageURL
		case "sortOrder":
			out[f] = c.SortOrder
		case "active":
			out[f] = c.IsActive
		case "parentId":
			out[f] = optionalID(c.ParentID)
		case "root":
			out[f] = c.IsRoot()
		case "createdAt":
			out[f] = timestamp(c.CreatedAt)
		case "updatedAt":
			out[f] = timestamp(c.UpdatedAt)
		}
	}
	if set.Wants(selection.RelParent) {
		out["parent"] = RenderCategory(c.Parent, set.Nested(selection.RelParent))
	}
	if set.Wants(selection.RelChildren) {
		out["children"] = RenderCategories(c.Children, set.Nested(selection.RelChildren))
	}
	if set.Wants(selection.RelProducts) {
		out["products"] = RenderProducts(c.Products, set.Nested(selection.RelProducts))
	}
	return out
}

func RenderCategories(categories []model.Category, set selection.Set) []any {
	out := make([]any, len(categories))
	for i := range categories {
		out[i] = RenderCategory(&categories[i], set)
	}
	return out
}

func RenderProduct(p *model.Product, set selection.Set) any {
	if p == nil {
		return nil
	}
	out := make(map[string]any)
	for _, f := range set.Fields() {
		switch f {
		case "id":
			out[f] = p.ID
		case "name":
			out[f] = p.Name
		case "description":
			out[f] = p.Description
		case "sku":
			if p.SKU != nil {
				out[f] = *p.SKU
			} else {
				out[f] = nil
			}
		case "slug":
			out[f] = p.Slug
		case "price":
			out[f] = p.Price.InexactFloat64()
		case "compareAtPrice":
			out[f] = optionalDecimal(p.CompareAtPrice)
		case "stockQuantity":
			out[f] = p.StockQuantity
		case "lowStockThreshold":
			out[f] = p.LowStockThreshold
		case "weight":
			out[f] = optionalDecimal(p.Weight)
		case "weightUnit":
			out[f] = p.WeightUnit
		case "active":
			out[f] = p.IsActive
		case "featured":
			out[f] = p.IsFeatured
		case "trackInventory":
			out[f] = p.TrackInventory
		case "brandId":
			out[f] = optionalID(p.BrandID)
		case "categoryId":
			out[f] = optionalID(p.CategoryID)
		case "inStock":
			out[f] = p.IsInStock()
		case "lowStock":
			out[f] = p.IsLowStock()
		case "createdAt":
			out[f] = timestamp(p.CreatedAt)
		case "updatedAt":
			out[f] = timestamp(p.UpdatedAt)
		}
	}
	if set.Wants(selection.RelBrand) {
		out["brand"] = RenderBrand(p.Brand, set.Nested(selection.RelBrand))
	}
	if set.Wants(selection.RelCategory) {
		out["category"] = RenderCategory(p.Category, set.Nested(selection.RelCategory))
	}
	if set.Wants(selection.RelImageURLs) {
		out["imageUrls"] = stringList(p.ImageURLs)
	}
	if set.Wants(selection.RelTags) {
		out["tags"] = stringList(p.Tags)
	}
	return out
}

func RenderProducts(products []model.Product, set selection.Set) []any {
	out := make([]any, len(products))
	for i := range products {
		out[i] = RenderProduct(&products[i], set)
	}
	return out
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func optionalDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

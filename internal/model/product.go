package model

import "github.com/shopspring/decimal"

const (
	DefaultLowStockThreshold = 5
	DefaultWeightUnit        = "kg"
)

type Product struct {
	BaseModel
	BrandID           *int64              `db:"brand_id" json:"brand_id"`       // Nullable
	CategoryID        *int64              `db:"category_id" json:"category_id"` // Nullable
	Name              string              `db:"name" json:"name"`
	Description       string              `db:"description" json:"description"`
	SKU               *string             `db:"sku" json:"sku"` // Nullable, unique when set
	Slug              string              `db:"slug" json:"slug"`
	Price             decimal.Decimal     `db:"price" json:"price"`
	CompareAtPrice    decimal.NullDecimal `db:"compare_at_price" json:"compare_at_price"`
	StockQuantity     int                 `db:"stock_quantity" json:"stock_quantity"`
	LowStockThreshold int                 `db:"low_stock_threshold" json:"low_stock_threshold"`
	Weight            decimal.NullDecimal `db:"weight" json:"weight"`
	WeightUnit        string              `db:"weight_unit" json:"weight_unit"`
	IsActive          bool                `db:"is_active" json:"is_active"`
	IsFeatured        bool                `db:"is_featured" json:"is_featured"`
	TrackInventory    bool                `db:"track_inventory" json:"track_inventory"`
	ImageURLs         []string            `db:"-" json:"image_urls,omitempty"` // product_images
	Tags              []string            `db:"-" json:"tags,omitempty"`       // product_tags
	Brand             *Brand              `db:"-" json:"brand,omitempty"`      // Joined data
	Category          *Category           `db:"-" json:"category,omitempty"`   // Joined data
}

// NewProduct returns an active, inventory-tracked product with the default
// threshold and weight unit and a slug derived from name.
func NewProduct(name string, price decimal.Decimal) *Product {
	return &Product{
		Name:              name,
		Slug:              GenerateSlug(name),
		Price:             price,
		LowStockThreshold: DefaultLowStockThreshold,
		WeightUnit:        DefaultWeightUnit,
		IsActive:          true,
		TrackInventory:    true,
	}
}

func (p *Product) Activate()   { p.IsActive = true }
func (p *Product) Deactivate() { p.IsActive = false }

func (p *Product) EnsureSlug() {
	if p.Slug == "" {
		p.Slug = GenerateSlug(p.Name)
	}
}

func (p *Product) IsInStock() bool {
	return !p.TrackInventory || p.StockQuantity > 0
}

func (p *Product) IsLowStock() bool {
	return p.TrackInventory && p.StockQuantity <= p.LowStockThreshold
}

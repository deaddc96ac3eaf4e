package dto

import "github.com/shopspring/decimal"

type ProductInput struct {
	Name              string           `mapstructure:"name" validate:"required,min=2,max=200"`
	Description       string           `mapstructure:"description" validate:"max=2000"`
	SKU               string           `mapstructure:"sku" validate:"max=100"`
	Slug              string           `mapstructure:"slug" validate:"max=100"`
	Price             decimal.Decimal  `mapstructure:"price" validate:"required,gt=0"`
	CompareAtPrice    *decimal.Decimal `mapstructure:"compareAtPrice" validate:"omitempty,gte=0"`
	StockQuantity     int              `mapstructure:"stockQuantity" validate:"gte=0"`
	LowStockThreshold *int             `mapstructure:"lowStockThreshold" validate:"omitempty,gte=0"`
	Weight            *decimal.Decimal `mapstructure:"weight" validate:"omitempty,gte=0"`
	WeightUnit        string           `mapstructure:"weightUnit" validate:"max=50"`
	Active            *bool            `mapstructure:"active"`
	Featured          bool             `mapstructure:"featured"`
	TrackInventory    *bool            `mapstructure:"trackInventory"`
	ImageURLs         []string         `mapstructure:"imageUrls" validate:"omitempty,dive,url"`
	Tags              []string         `mapstructure:"tags" validate:"omitempty,dive,max=100"`
	CategoryID        *int64           `mapstructure:"categoryId"`
	BrandID           *int64           `mapstructure:"brandId"`
}

package dto

import (
	"github.com/fekuna/catalog-service/internal/planner"
	"github.com/shopspring/decimal"
)

type Sort int

const (
	SortByName Sort = iota
	SortByPrice
	SortByStock // stock quantity, then name
	SortByCreatedDesc
	SortByUpdatedDesc
)

type StockLevel int

const (
	AnyStock StockLevel = iota
	LowStock            // tracked and at or below the threshold
	OutOfStock          // tracked and zero
	InStock             // untracked or above zero
)

type ProductFilters struct {
	ID              *int64
	Slug            string
	SKU             string
	BrandID         *int64
	CategoryID      *int64
	NamePattern     string
	Featured        *bool
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Stock           StockLevel
	IncludeInactive bool
	Sort            Sort
	Page            *planner.Page
}

type ProductStatistics struct {
	TotalActive     int64
	TotalFeatured   int64
	TotalLowStock   int64
	TotalOutOfStock int64
}

package dto

import "github.com/fekuna/catalog-service/internal/planner"

type Sort int

const (
	SortByName Sort = iota
	SortByCreatedDesc
	SortByUpdatedDesc
)

type BrandFilters struct {
	ID              *int64
	Name            string // case-insensitive exact match
	NamePattern     string // case-insensitive substring
	HasProducts     *bool  // with or without active products
	IncludeInactive bool
	Sort            Sort
	Page            *planner.Page
}

type BrandStatistics struct {
	TotalActive          int64
	TotalWithProducts    int64
	TotalWithoutProducts int64
}

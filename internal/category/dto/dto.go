package dto

import "github.com/fekuna/catalog-service/internal/planner"

type Sort int

const (
	SortByPosition Sort = iota // sort_order, then name
	SortByName
)

type CategoryFilters struct {
	ID              *int64
	IDs             []int64
	Slug            string
	Name            string // case-insensitive exact match
	NamePattern     string
	ParentIDs       []int64 // nil means ignore
	RootsOnly       bool
	HasProducts     *bool
	IncludeInactive bool
	Sort            Sort
	Page            *planner.Page
}

// Link is the parent reference of one category.
type Link struct {
	ID       int64  `db:"id"`
	ParentID *int64 `db:"parent_id"`
	IsActive bool   `db:"is_active"`
}

type CategoryStatistics struct {
	TotalActive          int64
	TotalRoot            int64
	TotalWithProducts    int64
	TotalWithoutProducts int64
}

// Package planner picks the cheapest fetch strategy for a normalized field
// set and executes it against the catalog store.
package planner

import (
	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/selection"
)

type Strategy int

const (
	// StrategyProjection selects only the requested scalar columns.
	StrategyProjection Strategy = iota
	// StrategyEntity fetches whole rows with no joins.
	StrategyEntity
	// StrategyEntityWithJoins fetches whole rows plus the requested relations.
	StrategyEntityWithJoins
)

func (s Strategy) String() string {
	switch s {
	case StrategyProjection:
		return "projection"
	case StrategyEntity:
		return "entity"
	case StrategyEntityWithJoins:
		return "entity_with_joins"
	default:
		return "unknown"
	}
}

// Choose maps a field set to a strategy.
func Choose(set selection.Set) Strategy {
	switch {
	case set.IsOnlyBasicFields():
		return StrategyProjection
	case set.HasRelationshipFields():
		return StrategyEntityWithJoins
	default:
		return StrategyEntity
	}
}

// Page is a zero-based page index and a positive page size.
type Page struct {
	Index int
	Size  int
}

func NewPage(index, size int) (*Page, error) {
	if index < 0 {
		return nil, apperror.Validation("page index must not be negative, got %d", index)
	}
	if size <= 0 {
		return nil, apperror.Validation("page size must be positive, got %d", size)
	}
	return &Page{Index: index, Size: size}, nil
}

// First returns a page holding the first n rows.
func First(n int) (*Page, error) {
	return NewPage(0, n)
}

func (p Page) Offset() int { return p.Index * p.Size }

type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

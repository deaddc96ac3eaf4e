package planner

import (
	"fmt"
	"strings"

	"github.com/fekuna/catalog-service/internal/selection"
)

// Request describes one read: the output shape, the filter, the order and
// an optional page.
type Request struct {
	Set   selection.Set
	Where *Criteria
	Order []Order
	Page  *Page

	// Extra columns are selected whatever the strategy. Nested loads use it
	// to keep the foreign key they group by.
	Extra []string
}

// Join is a to-one relation fetched in the same statement.
type Join struct {
	Relation selection.Relation
	Name     string // result column prefix, e.g. "brand"
	Table    string
	Alias    string
	On       string
	Columns  []string
	Set      selection.Set
}

type joinDef struct {
	rel        selection.Relation
	name       string
	alias      string
	foreignKey string
}

var toOne = map[*selection.Schema][]joinDef{
	selection.Product: {
		{rel: selection.RelBrand, name: "brand", alias: "b", foreignKey: "brand_id"},
		{rel: selection.RelCategory, name: "category", alias: "c", foreignKey: "category_id"},
	},
	selection.Category: {
		{rel: selection.RelParent, name: "parent", alias: "pc", foreignKey: "parent_id"},
	},
}

// Plan is the resolved data access for one Request.
type Plan struct {
	Strategy Strategy
	Schema   *selection.Schema
	Set      selection.Set
	Columns  []string
	Joins    []Join
	// Loads are the relations resolved after the main statement with one
	// batched query each.
	Loads selection.Relation
	Where *Criteria
	Order []Order
	Page  *Page
}

// Build resolves a request into a plan. It does not touch the store.
func Build(req Request) Plan {
	set := req.Set
	schema := set.Schema()
	p := Plan{
		Strategy: Choose(set),
		Schema:   schema,
		Set:      set,
		Where:    req.Where,
		Page:     req.Page,
		Order:    withTiebreak(req.Order),
	}

	if p.Strategy == StrategyProjection {
		p.Columns = set.Columns()
		if len(p.Columns) == 0 {
			p.Columns = schema.AllColumns()
		}
	} else {
		p.Columns = schema.AllColumns()
	}
	p.Columns = appendMissing(p.Columns, req.Extra...)

	rels := set.Relations()
	if p.Strategy == StrategyEntityWithJoins {
		for _, def := range toOne[schema] {
			if !rels.Has(def.rel) {
				continue
			}
			nested := set.Nested(def.rel)
			related := nested.Schema()
			columns := nested.Columns()
			// Relations of the joined row are loaded afterwards by their
			// foreign key, so the key must be selected too.
			for _, inner := range toOne[related] {
				if nested.Wants(inner.rel) {
					columns = appendMissing(columns, inner.foreignKey)
				}
			}
			p.Joins = append(p.Joins, Join{
				Relation: def.rel,
				Name:     def.name,
				Table:    related.Table,
				Alias:    def.alias,
				On:       fmt.Sprintf("%s.id = %s.%s", def.alias, schema.Alias, def.foreignKey),
				Columns:  columns,
				Set:      nested,
			})
			rels &^= def.rel
		}
	}
	p.Loads = rels
	return p
}

// SQL renders the plan with "?" placeholders. Callers rebind it for their
// driver.
func (p Plan) SQL() (string, []any) {
	a := p.Schema.Alias

	cols := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		cols = append(cols, a+"."+c)
	}
	for _, j := range p.Joins {
		for _, c := range j.Columns {
			cols = append(cols, fmt.Sprintf(`%s.%s AS "%s.%s"`, j.Alias, c, j.Name, c))
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	fmt.Fprintf(&sb, " FROM %s %s", p.Schema.Table, a)
	for _, j := range p.Joins {
		fmt.Fprintf(&sb, " LEFT JOIN %s %s ON %s", j.Table, j.Alias, j.On)
	}

	where, args := p.Where.render(a)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(p.Order) > 0 {
		parts := make([]string, len(p.Order))
		for i, o := range p.Order {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts[i] = a + "." + o.Column + " " + dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if p.Page != nil {
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", p.Page.Size, p.Page.Offset())
	}
	return sb.String(), args
}

// CountSQL renders a count of the rows matching the plan's filter.
func (p Plan) CountSQL() (string, []any) {
	where, args := p.Where.render(p.Schema.Alias)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", p.Schema.Table, p.Schema.Alias)
	if where != "" {
		query += " WHERE " + where
	}
	return query, args
}

func withTiebreak(order []Order) []Order {
	if len(order) == 0 {
		order = []Order{Asc("name")}
	}
	for _, o := range order {
		if o.Column == selection.IDField {
			return order
		}
	}
	out := make([]Order, len(order), len(order)+1)
	copy(out, order)
	return append(out, Asc(selection.IDField))
}

func appendMissing(cols []string, extra ...string) []string {
	for _, e := range extra {
		found := false
		for _, c := range cols {
			if c == e {
				found = true
				break
			}
		}
		if !found {
			cols = append(cols, e)
		}
	}
	return cols
}

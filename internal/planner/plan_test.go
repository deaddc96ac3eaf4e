package planner

import (
	"strings"
	"testing"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoose(t *testing.T) {
	tests := []struct {
		name   string
		schema *selection.Schema
		fields []string
		want   Strategy
	}{
		{"scalars only", selection.Product, []string{"name", "price"}, StrategyProjection},
		{"meta only", selection.Product, []string{"__typename"}, StrategyProjection},
		{"collection only", selection.Product, []string{"name", "tags"}, StrategyEntity},
		{"to-one relation", selection.Product, []string{"brand.name"}, StrategyEntityWithJoins},
		{"to-many relation", selection.Category, []string{"children"}, StrategyEntityWithJoins},
		{"brand products", selection.Brand, []string{"products.name"}, StrategyEntityWithJoins},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Choose(selection.Analyze(tt.schema, tt.fields)))
		})
	}
}

func TestNewPage(t *testing.T) {
	p, err := NewPage(2, 25)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Offset())

	_, err = NewPage(0, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = NewPage(-1, 10)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestBuildProjection(t *testing.T) {
	page, err := NewPage(1, 10)
	require.NoError(t, err)

	plan := Build(Request{
		Set:   selection.Analyze(selection.Product, []string{"name", "price"}),
		Where: Where().Active(),
		Page:  page,
	})
	query, args := plan.SQL()

	assert.Equal(t, StrategyProjection, plan.Strategy)
	assert.Empty(t, plan.Joins)
	assert.Zero(t, plan.Loads)
	assert.Equal(t,
		"SELECT p.id, p.name, p.price FROM products p WHERE p.is_active = TRUE ORDER BY p.name ASC, p.id ASC LIMIT 10 OFFSET 10",
		query)
	assert.Empty(t, args)
}

func TestBuildJoinsSelectOnlyNestedColumns(t *testing.T) {
	plan := Build(Request{
		Set:   selection.Analyze(selection.Product, []string{"name", "brand.name", "tags"}),
		Where: Where().Eq("id", int64(7)),
	})
	query, args := plan.SQL()

	assert.Equal(t, StrategyEntityWithJoins, plan.Strategy)
	require.Len(t, plan.Joins, 1)
	assert.Equal(t, []string{"id", "name"}, plan.Joins[0].Columns)
	assert.Equal(t, selection.RelTags, plan.Loads)
	assert.Contains(t, query, `b.id AS "brand.id", b.name AS "brand.name"`)
	assert.Contains(t, query, "LEFT JOIN brands b ON b.id = p.brand_id")
	assert.Contains(t, query, "WHERE p.id = ?")
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []any{int64(7)}, args)
}

func TestBuildJoinKeepsForeignKeyOfNestedParent(t *testing.T) {
	plan := Build(Request{
		Set: selection.Analyze(selection.Category, []string{"name", "parent.name", "parent.parent.name"}),
	})
	query, _ := plan.SQL()

	require.Len(t, plan.Joins, 1)
	assert.Equal(t, []string{"id", "name", "parent_id"}, plan.Joins[0].Columns)
	assert.Contains(t, query, `pc.parent_id AS "parent.parent_id"`)

	plan = Build(Request{Set: selection.Analyze(selection.Category, []string{"parent.name"})})
	assert.Equal(t, []string{"id", "name"}, plan.Joins[0].Columns)
}

func TestBuildEntityLoadsCollectionsWithoutJoins(t *testing.T) {
	plan := Build(Request{Set: selection.Analyze(selection.Product, []string{"imageUrls"})})
	assert.Equal(t, StrategyEntity, plan.Strategy)
	assert.Empty(t, plan.Joins)
	assert.Equal(t, selection.Product.AllColumns(), plan.Columns)
	assert.Equal(t, selection.RelImageURLs, plan.Loads)
}

func TestBuildCategoryParentJoin(t *testing.T) {
	plan := Build(Request{Set: selection.Analyze(selection.Category, []string{"name", "parent.name", "children"})})
	require.Len(t, plan.Joins, 1)
	assert.Equal(t, "parent", plan.Joins[0].Name)
	assert.Equal(t, "pc.id = c.parent_id", plan.Joins[0].On)
	assert.Equal(t, selection.RelChildren, plan.Loads)
}

func TestBuildExtraColumns(t *testing.T) {
	plan := Build(Request{
		Set:   selection.Analyze(selection.Product, []string{"name"}),
		Extra: []string{"brand_id", "name"},
	})
	assert.Equal(t, []string{"id", "name", "brand_id"}, plan.Columns)
}

func TestOrderTiebreak(t *testing.T) {
	plan := Build(Request{
		Set:   selection.Analyze(selection.Product, []string{"price"}),
		Order: []Order{Asc("price")},
	})
	query, _ := plan.SQL()
	assert.True(t, strings.HasSuffix(query, "ORDER BY p.price ASC, p.id ASC"), query)

	plan = Build(Request{
		Set:   selection.Analyze(selection.Product, nil),
		Order: []Order{Desc("created_at"), Desc("id")},
	})
	query, _ = plan.SQL()
	assert.True(t, strings.HasSuffix(query, "ORDER BY p.created_at DESC, p.id DESC"), query)
}

func TestCriteria(t *testing.T) {
	where, args := Where().
		Contains("name", "50%_off").
		In("brand_id", []int64{1, 2}).
		IsNull("parent_id").
		render("p")

	assert.Equal(t,
		`LOWER(p.name) LIKE LOWER(?) ESCAPE '\' AND p.brand_id IN (?, ?) AND p.parent_id IS NULL`,
		where)
	assert.Equal(t, []any{`%50\%\_off%`, int64(1), int64(2)}, args)

	where, args = Where().In("id", nil).render("c")
	assert.Equal(t, "1 = 0", where)
	assert.Empty(t, args)

	var none *Criteria
	where, _ = none.render("c")
	assert.Empty(t, where)
}

func TestCountSQL(t *testing.T) {
	query, args := Build(Request{
		Set:   selection.All(selection.Brand),
		Where: Where().Active(),
		Page:  &Page{Index: 3, Size: 5},
	}).CountSQL()
	assert.Equal(t, "SELECT COUNT(*) FROM brands b WHERE b.is_active = TRUE", query)
	assert.Empty(t, args)
}

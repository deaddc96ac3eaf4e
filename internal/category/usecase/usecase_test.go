package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/category"
	"github.com/fekuna/catalog-service/internal/category/dto"
	"github.com/fekuna/catalog-service/internal/category/repository"
	"github.com/fekuna/catalog-service/internal/database/dbtest"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/model"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var all = selection.All(selection.Category)

func setup(t *testing.T) (category.UseCase, *sqlx.DB) {
	db := dbtest.NewSQLite(t)
	return NewCategoryUseCase(repository.NewPGRepository(db), 0, logger.NewNop()), db
}

func create(t *testing.T, uc category.UseCase, name string, parent *model.Category, sortOrder int) *model.Category {
	t.Helper()
	input := &dto.CategoryInput{Name: name, SortOrder: sortOrder}
	if parent != nil {
		input.ParentID = &parent.ID
	}
	c, err := uc.CreateCategory(context.Background(), input)
	require.NoError(t, err)
	return c
}

func names(categories []model.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.Name
	}
	return out
}

func TestCreateCategoryDerivesSlug(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	c := create(t, uc, "Home & Garden!!", nil, 0)
	assert.Equal(t, "home-garden", c.Slug)
	assert.True(t, c.IsRoot())

	explicit, err := uc.CreateCategory(ctx, &dto.CategoryInput{Name: "Shoes", Slug: "s"})
	require.NoError(t, err)

	got, err := uc.GetCategoryBy(ctx, &dto.CategoryFilters{Slug: "s"}, all)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, explicit.ID, got.ID)

	missing, err := uc.GetCategoryBy(ctx, &dto.CategoryFilters{Slug: "nope"}, all)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetCategoryByKeepsFilters(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	c := create(t, uc, "Tools", nil, 0)

	filters := &dto.CategoryFilters{Slug: "tools"}
	got, err := uc.GetCategoryBy(ctx, filters, all)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)
	assert.False(t, filters.IncludeInactive)
}

func TestCreateCategoryRejectsDuplicates(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	create(t, uc, "Electronics", nil, 0)

	_, err := uc.CreateCategory(ctx, &dto.CategoryInput{Name: "electronics", Slug: "other"})
	require.ErrorIs(t, err, apperror.ErrDuplicate)
	ae, _ := apperror.As(err)
	assert.Equal(t, "Category with name 'electronics' already exists", ae.Message)

	_, err = uc.CreateCategory(ctx, &dto.CategoryInput{Name: "Gadgets", Slug: "electronics"})
	require.ErrorIs(t, err, apperror.ErrDuplicate)
	ae, _ = apperror.As(err)
	assert.Equal(t, "Category with slug 'electronics' already exists", ae.Message)

	missing := int64(999)
	_, err = uc.CreateCategory(ctx, &dto.CategoryInput{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMoveCategoryRejectsCycles(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	electronics := create(t, uc, "Electronics", nil, 0)
	phones := create(t, uc, "Phones", electronics, 0)
	smartphones := create(t, uc, "Smartphones", phones, 0)

	_, err := uc.MoveCategory(ctx, electronics.ID, &electronics.ID)
	require.ErrorIs(t, err, apperror.ErrNotAllowed)
	ae, _ := apperror.As(err)
	assert.Equal(t, "Cannot move category to its own descendant", ae.Message)

	_, err = uc.MoveCategory(ctx, electronics.ID, &smartphones.ID)
	assert.ErrorIs(t, err, apperror.ErrNotAllowed)

	_, err = uc.UpdateCategory(ctx, phones.ID, &dto.CategoryInput{Name: "Phones", ParentID: &smartphones.ID})
	assert.ErrorIs(t, err, apperror.ErrNotAllowed)

	got, err := uc.GetCategory(ctx, electronics.ID, all)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
}

func TestMoveCategoryAndPath(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	electronics := create(t, uc, "Electronics", nil, 0)
	phones := create(t, uc, "Phones", electronics, 0)
	accessories := create(t, uc, "Accessories", nil, 0)
	cases := create(t, uc, "Cases", accessories, 0)

	moved, err := uc.MoveCategory(ctx, cases.ID, &phones.ID)
	require.NoError(t, err)
	assert.Equal(t, phones.ID, *moved.ParentID)

	path, err := uc.Path(ctx, cases.ID, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Phones", "Cases"}, names(path))

	root, err := uc.MoveCategory(ctx, phones.ID, nil)
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	path, err = uc.Path(ctx, cases.ID, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Phones", "Cases"}, names(path))

	_, err = uc.Path(ctx, 999, all)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDescendants(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	root := create(t, uc, "Electronics", nil, 0)
	phones := create(t, uc, "Phones", root, 2)
	laptops := create(t, uc, "Laptops", root, 1)
	create(t, uc, "Android", phones, 0)
	create(t, uc, "Gaming", laptops, 0)
	hidden := create(t, uc, "Hidden", root, 0)
	create(t, uc, "Under Hidden", hidden, 0)
	deep := create(t, uc, "Deep", phones, 5)
	create(t, uc, "Deeper", deep, 0)

	_, err := uc.SetCategoryActive(ctx, hidden.ID, false)
	require.NoError(t, err)

	got, err := uc.Descendants(ctx, root.ID, 2, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Android", "Gaming", "Under Hidden", "Laptops", "Phones", "Deep"}, names(got))

	got, err = uc.Descendants(ctx, root.ID, 1, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Laptops", "Phones"}, names(got))

	_, err = uc.Descendants(ctx, root.ID, 0, all)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = uc.Descendants(ctx, 999, 2, all)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCorruptedHierarchyFailsClosed(t *testing.T) {
	uc, db := setup(t)
	ctx := context.Background()

	a := create(t, uc, "Alpha", nil, 0)
	b := create(t, uc, "Beta", a, 0)
	_, err := db.Exec(db.Rebind(`UPDATE categories SET parent_id = ? WHERE id = ?`), b.ID, a.ID)
	require.NoError(t, err)

	_, err = uc.Path(ctx, a.ID, all)
	require.ErrorIs(t, err, apperror.ErrInternal)
	ae, _ := apperror.As(err)
	assert.Equal(t, "category hierarchy is corrupted", ae.Message)

	_, err = uc.Descendants(ctx, a.ID, 3, all)
	assert.ErrorIs(t, err, apperror.ErrInternal)

	c := create(t, uc, "Gamma", nil, 0)
	_, err = uc.MoveCategory(ctx, c.ID, &a.ID)
	assert.ErrorIs(t, err, apperror.ErrInternal)
}

func TestDeleteCategoryWithActiveChildren(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	parent := create(t, uc, "Electronics", nil, 0)
	child := create(t, uc, "Phones", parent, 0)

	err := uc.DeleteCategory(ctx, parent.ID)
	require.ErrorIs(t, err, apperror.ErrNotAllowed)
	ae, _ := apperror.As(err)
	assert.Equal(t, "Cannot delete category with active subcategories", ae.Message)

	require.NoError(t, uc.DeleteCategory(ctx, child.ID))
	require.NoError(t, uc.DeleteCategory(ctx, parent.ID))

	got, err := uc.GetCategory(ctx, parent.ID, all)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	listed, err := uc.ListCategories(ctx, &dto.CategoryFilters{}, all)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestStatisticsAndLists(t *testing.T) {
	uc, db := setup(t)
	ctx := context.Background()

	root := create(t, uc, "Electronics", nil, 1)
	books := create(t, uc, "Books", nil, 0)
	create(t, uc, "Phones", root, 0)
	_, err := db.Exec(db.Rebind(`INSERT INTO products (category_id, name, slug, price, created_at, updated_at) VALUES (?, 'Novel', 'novel', 10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`), books.ID)
	require.NoError(t, err)

	roots, err := uc.ListCategories(ctx, &dto.CategoryFilters{RootsOnly: true}, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Electronics"}, names(roots))

	children, err := uc.ChildCategories(ctx, root.ID, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Phones"}, names(children))

	found, err := uc.ListCategories(ctx, &dto.CategoryFilters{NamePattern: "ON", Sort: dto.SortByName}, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Phones"}, names(found))

	stats, err := uc.GetCategoryStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, &dto.CategoryStatistics{
		TotalActive:          3,
		TotalRoot:            2,
		TotalWithProducts:    1,
		TotalWithoutProducts: 2,
	}, stats)
}

func TestUpdateSortOrder(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	c := create(t, uc, "Electronics", nil, 0)
	updated, err := uc.UpdateSortOrder(ctx, c.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.SortOrder)

	_, err = uc.UpdateSortOrder(ctx, 999, 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

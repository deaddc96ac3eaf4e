package query

import (
	"testing"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name     string           `mapstructure:"name" validate:"required,max=10"`
	Price    decimal.Decimal  `mapstructure:"price" validate:"gt=0"`
	Discount *decimal.Decimal `mapstructure:"discount"`
	Stock    int              `mapstructure:"stock" validate:"gte=0"`
	ParentID *int64           `mapstructure:"parentId"`
}

func TestArgsScalars(t *testing.T) {
	args := Args{"id": float64(42), "ids": []any{float64(1), "2"}, "flag": "true", "price": "19.99"}

	id, err := args.Int64("id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	ids, err := args.Int64s("ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	flag, err := args.Bool("flag")
	require.NoError(t, err)
	assert.True(t, flag)

	price, err := args.Decimal("price")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("19.99")))

	missing, err := args.OptionalInt64("parentId")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = args.Int64("other")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = Args{"id": "abc"}.Int64("id")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestArgsPage(t *testing.T) {
	page, err := Args{}.Page(20, 100)
	require.NoError(t, err)
	assert.Nil(t, page)

	page, err = Args{"pageIndex": float64(2)}.Page(20, 100)
	require.NoError(t, err)
	assert.Equal(t, 40, page.Offset())
	assert.Equal(t, 20, page.Size)

	_, err = Args{"pageSize": float64(0)}.Page(20, 100)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = Args{"pageSize": float64(101)}.Page(20, 100)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = Args{"pageIndex": float64(-1)}.Page(20, 100)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestArgsDecode(t *testing.T) {
	var in sampleInput
	err := Args{"input": map[string]any{
		"name":     "Shoe",
		"price":    float64(49.5),
		"discount": "5",
		"stock":    "3",
		"parentId": float64(9),
	}}.Decode("input", &in)
	require.NoError(t, err)

	assert.Equal(t, "Shoe", in.Name)
	assert.True(t, in.Price.Equal(decimal.RequireFromString("49.5")))
	require.NotNil(t, in.Discount)
	assert.True(t, in.Discount.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 3, in.Stock)
	require.NotNil(t, in.ParentID)
	assert.EqualValues(t, 9, *in.ParentID)
}

func TestArgsDecodeValidates(t *testing.T) {
	var in sampleInput
	err := Args{"name": "", "price": float64(0), "stock": float64(-1)}.Decode("", &in)
	require.ErrorIs(t, err, apperror.ErrValidation)

	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Message, "name is required")
	assert.Contains(t, ae.Message, "price must be greater than 0")
	assert.Contains(t, ae.Message, "stock must be at least 0")
}

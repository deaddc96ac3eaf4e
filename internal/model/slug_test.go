package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Home & Garden!!", "home-garden"},
		{"Electronics", "electronics"},
		{"  Phones   and  Tablets ", "phones-and-tablets"},
		{"Kids' Toys -- 2024", "kids-toys-2024"},
		{"---", ""},
		{"Café Crème", "caf-crme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.name))
		})
	}
}

func TestGenerateSlugDeterministic(t *testing.T) {
	assert.Equal(t, GenerateSlug("Home & Garden!!"), GenerateSlug("Home & Garden!!"))
}

func TestCategoryEnsureSlug(t *testing.T) {
	c := &Category{Name: "Home & Garden!!"}
	c.EnsureSlug()
	assert.Equal(t, "home-garden", c.Slug)

	c = &Category{Name: "Phones", Slug: "mobile"}
	c.EnsureSlug()
	assert.Equal(t, "mobile", c.Slug)
}

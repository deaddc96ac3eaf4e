package dto

type CategoryInput struct {
	ParentID    *int64 `mapstructure:"parentId"`
	Name        string `mapstructure:"name" validate:"required,min=2,max=100"`
	Slug        string `mapstructure:"slug" validate:"max=100"`
	Description string `mapstructure:"description"`
	ImageURL    string `mapstructure:"imageUrl" validate:"omitempty,url"`
	SortOrder   int    `mapstructure:"sortOrder"`
}

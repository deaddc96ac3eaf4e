package model

type Category struct {
	BaseModel
	ParentID    *int64     `db:"parent_id" json:"parent_id"` // Nullable, nil for roots
	Name        string     `db:"name" json:"name"`
	Slug        string     `db:"slug" json:"slug"`
	Description string     `db:"description" json:"description"`
	ImageURL    string     `db:"image_url" json:"image_url"`
	SortOrder   int        `db:"sort_order" json:"sort_order"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	Parent      *Category  `db:"-" json:"parent,omitempty"`
	Children    []Category `db:"-" json:"children,omitempty"` // Computed by lookup, never persisted
	Products    []Product  `db:"-" json:"products,omitempty"`
}

func (c *Category) IsRoot() bool { return c.ParentID == nil }

func (c *Category) Activate()   { c.IsActive = true }
func (c *Category) Deactivate() { c.IsActive = false }

// EnsureSlug derives the slug from the name when none was supplied.
func (c *Category) EnsureSlug() {
	if c.Slug == "" {
		c.Slug = GenerateSlug(c.Name)
	}
}

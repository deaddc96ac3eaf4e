package model

type Brand struct {
	BaseModel
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	LogoURL     string    `db:"logo_url" json:"logo_url"`
	WebsiteURL  string    `db:"website_url" json:"website_url"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Products    []Product `db:"-" json:"products,omitempty"` // Loaded on demand
}

func (b *Brand) Activate()   { b.IsActive = true }
func (b *Brand) Deactivate() { b.IsActive = false }

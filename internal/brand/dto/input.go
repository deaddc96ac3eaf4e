package dto

type BrandInput struct {
	Name        string `mapstructure:"name" validate:"required,min=2,max=100"`
	Description string `mapstructure:"description" validate:"max=500"`
	LogoURL     string `mapstructure:"logoUrl" validate:"omitempty,url"`
	WebsiteURL  string `mapstructure:"websiteUrl" validate:"omitempty,url"`
}

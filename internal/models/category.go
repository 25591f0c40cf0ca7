package models

import "time"

type CategoryType string

const (
	CategoryTypeAuto      CategoryType = "auto"
	CategoryTypeContainer CategoryType = "container"
	CategoryTypeDirect    CategoryType = "direct"
)

type DisplaySection string

const (
	SectionMen     DisplaySection = "men"
	SectionWomen   DisplaySection = "women"
	SectionUnisex  DisplaySection = "unisex"
	SectionGeneral DisplaySection = "general"
)

type Category struct {
	ID             int64          `json:"id" db:"id"`
	Name           string         `json:"name" db:"name"`
	Label          *string        `json:"label" db:"label"`
	ParentID       *int64         `json:"parent_id" db:"parent_id"`
	CategoryType   CategoryType   `json:"category_type" db:"category_type"`
	IsVisible      bool           `json:"is_visible" db:"is_visible"`
	DisplaySection DisplaySection `json:"display_section" db:"display_section"` // empty means detect from name
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the label override when present.
func (c *Category) DisplayName() string {
	if c.Label != nil && *c.Label != "" {
		return *c.Label
	}
	return c.Name
}

// CategoryInput is the admin payload for creating or updating a category.
type CategoryInput struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Label          *string `json:"label" validate:"omitempty,max=100"`
	ParentID       *int64  `json:"parent_id" validate:"omitempty,gt=0"`
	CategoryType   string  `json:"category_type" validate:"omitempty,oneof=auto container direct"`
	IsVisible      *bool   `json:"is_visible"`
	DisplaySection string  `json:"display_section" validate:"omitempty,oneof=men women unisex general"`
}

// CategoryNode is the navigation view of a category with its resolved type and count.
type CategoryNode struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Label          string          `json:"label"`
	Type           CategoryType    `json:"type"`
	DisplaySection DisplaySection  `json:"display_section"`
	ProductCount   int             `json:"product_count"`
	Subcategories  []*CategoryNode `json:"subcategories,omitempty"`
}

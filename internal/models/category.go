package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is applied when a category is created without a color.
const DefaultCategoryColor = "#3B82F6"

// Category groups tasks by name. Tasks reference categories by name only.
type Category struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	UsageFrequency int       `json:"usage_frequency"`
	Color          string    `json:"color"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CategoryCreate is the request body for creating a category
type CategoryCreate struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hex_color"`
	IsActive    *bool   `json:"is_active"`
}

// Normalize sanitizes the name.
func (c *CategoryCreate) Normalize() {
	c.Name = SanitizeText(c.Name)
}

// ToCategory builds a new Category applying defaults.
func (c *CategoryCreate) ToCategory() *Category {
	cat := &Category{
		Name:        c.Name,
		Description: c.Description,
		Color:       DefaultCategoryColor,
		IsActive:    true,
	}
	if c.Color != nil {
		cat.Color = *c.Color
	}
	if c.IsActive != nil {
		cat.IsActive = *c.IsActive
	}
	return cat
}

// CategoryUpdate is a merge patch for a category. usage_frequency is not
// editable here; it only changes through task writes or an explicit reset.
type CategoryUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hex_color"`
	IsActive    *bool   `json:"is_active"`
}

// Normalize sanitizes the name.
func (u *CategoryUpdate) Normalize() {
	u.Name = sanitizeOptional(u.Name)
}

// Apply merges the supplied fields into c.
func (u *CategoryUpdate) Apply(c *Category) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	IsActive *bool
	MinUsage *int
	Search   string
	Skip     int
	Limit    int
}

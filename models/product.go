package models

import "time"

// Product is a catalog entry. The analytics reports only read Name, Images,
// Price and Slug; the rest exists for the storefront and admin CRUD.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"originalPrice,omitempty"`
	Description   string    `json:"description"`
	Images        []string  `json:"images"`
	Status        string    `json:"status"`
	IsActive      bool      `json:"isActive"`
	SortOrder     int       `json:"sortOrder"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductInput is the create/update payload for catalog entries.
type ProductInput struct {
	Name          string   `json:"name" binding:"required"`
	Slug          string   `json:"slug" binding:"required"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Description   string   `json:"description"`
	Images        []string `json:"images"`
	Status        string   `json:"status"`
	IsActive      *bool    `json:"isActive"`
	SortOrder     int      `json:"sortOrder"`
}

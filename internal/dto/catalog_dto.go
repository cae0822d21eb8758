package dto

import "github.com/google/uuid"

type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Category    string   `json:"category" validate:"required"`
	ImageURLs   []string `json:"imageUrls"`
}

type ProductSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Stock         int       `json:"stock"`
	Images        []string  `json:"images"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	Category      string    `json:"category,omitempty"`
}

type ProductPage struct {
	Page          int              `json:"page"`
	Limit         int              `json:"limit"`
	TotalProducts int64            `json:"totalProducts"`
	TotalPages    int              `json:"totalPages"`
	Products      []ProductSummary `json:"products"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

package domain

import "time"

// Product is an item sold by a business.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category,omitempty"`
	Image       string    `json:"image,omitempty"`
	BusinessID  string    `json:"businessId"`
	SubgroupID  string    `json:"subgroupId,omitempty"`
	Available   bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Meal is a prepared-food product with a portion and preparation time.
type Meal struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Image       string    `json:"image,omitempty"`
	BusinessID  string    `json:"businessId"`
	SubgroupID  string    `json:"subgroupId,omitempty"`
	PrepMinutes int       `json:"preparationTime,omitempty"`
	Available   bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
}

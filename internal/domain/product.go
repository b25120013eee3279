package domain

import (
	"time"
)

// Category is the fixed set of catalog categories.
type Category string

const (
	CategorySmartphones Category = "Smartphones"
	CategoryLaptops     Category = "Laptops"
	CategoryHeadphones  Category = "Headphones"
	CategorySmartTVs    Category = "Smart TVs"
	CategoryAccessories Category = "Accessories"
	CategoryGaming      Category = "Gaming"
	CategoryCameras     Category = "Cameras"
	CategorySmartHome   Category = "Smart Home"

	// CategoryAll is the filter wildcard, not a real category.
	CategoryAll Category = "All"
)

// Categories lists every real catalog category in display order.
func Categories() []Category {
	return []Category{
		CategorySmartphones,
		CategoryLaptops,
		CategoryHeadphones,
		CategorySmartTVs,
		CategoryAccessories,
		CategoryGaming,
		CategoryCameras,
		CategorySmartHome,
	}
}

// Valid reports whether c is one of the fixed catalog categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents an immutable catalog entry
type Product struct {
	ID          string            `json:"id" db:"id"`
	Brand       string            `json:"brand" db:"brand"`
	Name        string            `json:"name" db:"name"`
	Price       float64           `json:"price" db:"price"`
	Category    Category          `json:"category" db:"category"`
	Stock       int               `json:"stock" db:"stock"`
	Images      []string          `json:"images" db:"images"`
	Description string            `json:"description" db:"description"`
	Specs       map[string]string `json:"specs" db:"specs"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

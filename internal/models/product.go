package models

import "gorm.io/gorm"

// Product categories, mirroring the cafe menu.
const (
	CategoryHot    = "hot"
	CategoryIced   = "iced"
	CategoryBeans  = "beans"
	CategorySweets = "sweets"
)

// Product represents a product in the catalog. Prices are Chilean pesos,
// which have no fractional unit, so they are stored as plain integers.
type Product struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Price       int64  `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Category    string `json:"category" validate:"required,oneof=hot iced beans sweets"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

package models

import "time"

// OrderLine is a single line of a committed order. UnitPrice is the price
// frozen at the moment the product was added to the cart, independent of
// later catalog price changes.
type OrderLine struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36)"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
}

// Subtotal returns quantity times the frozen unit price.
func (l OrderLine) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// Order represents a committed purchase. It owns its lines: deleting an
// order deletes the lines with it.
type Order struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Total     int64       `json:"total"`
	Lines     []OrderLine `json:"lines" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `json:"created_at"`
}

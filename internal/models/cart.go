package models

import "sort"

// CartItem is a fixed-shape cart entry: the product reference, a display
// name, the unit price snapshot captured at add time and the quantity.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Cart is the session-scoped collection of desired purchases. It is a plain
// value passed into and out of every operation; the session store persists
// it as one unit.
type Cart struct {
	Items map[string]CartItem `json:"items"`
}

// NewCart returns an empty cart.
func NewCart() Cart {
	return Cart{Items: make(map[string]CartItem)}
}

// IsEmpty reports whether the cart has no entries.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Total sums unit price times quantity across all entries.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += int64(item.Quantity) * item.UnitPrice
	}
	return total
}

// SortedItems returns the entries ordered by product ID so that callers
// iterating the cart do so deterministically.
func (c Cart) SortedItems() []CartItem {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items
}

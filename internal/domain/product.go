package domain

import "time"

// Product is a catalog entry. Price is what the customer pays per unit,
// Cost is what the vendor paid per unit (used for profit reporting only).
type Product struct {
	ID        string
	Name      string
	Price     float64
	Cost      float64
	Category  string
	CreatedAt time.Time
}

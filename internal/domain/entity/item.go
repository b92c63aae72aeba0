package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo vendible con stock por ubicación.
// Stock: locationID -> cantidad disponible.
type Item struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     map[string]int  `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockAt devuelve la cantidad en la ubicación (0 si nunca hubo stock allí).
func (i *Item) StockAt(locationID string) int {
	return i.Stock[locationID]
}

// TotalStock suma el stock de todas las ubicaciones.
func (i *Item) TotalStock() int {
	total := 0
	for _, q := range i.Stock {
		total += q
	}
	return total
}

package dto

import "github.com/shopspring/decimal"

// CreateItemRequest body para POST /api/items. InitialStock es location_id → cantidad.
type CreateItemRequest struct {
	SKU          string          `json:"sku" validate:"required,max=64"`
	Name         string          `json:"name" validate:"required,max=200"`
	Price        decimal.Decimal `json:"price"`
	InitialStock map[string]int  `json:"initial_stock" validate:"omitempty,dive,keys,required,endkeys,min=0,max=2147483647"`
}

// ItemResponse artículo con su stock por ubicación y total.
type ItemResponse struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      map[string]int  `json:"stock"`
	TotalStock int             `json:"total_stock"`
}

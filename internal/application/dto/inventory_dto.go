package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/inventory/adjust (ajuste crudo, sin movimiento).
type AdjustStockRequest struct {
	ItemID     string `json:"item_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Delta      int    `json:"delta" validate:"required,min=-2147483647,max=2147483647"`
}

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ItemID     string `json:"item_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=increase decrease"`
	Quantity   int    `json:"quantity" validate:"required,gt=0,max=2147483647"`
	Reason     string `json:"reason" validate:"max=255"`
}

// ListMovementsQuery filtros de GET /api/inventory/movements.
type ListMovementsQuery struct {
	Limit      int    `query:"limit" validate:"min=0,max=100"`
	Offset     int    `query:"offset" validate:"min=0"`
	ItemID     string `query:"item_id"`
	LocationID string `query:"location_id"`
	Type       string `query:"type" validate:"omitempty,oneof=increase decrease"`
	OrderID    string `query:"order_id"`
}

// Page paginación con valores por defecto aplicados.
func (q ListMovementsQuery) Page() PageRequest {
	p := PageRequest{Limit: q.Limit, Offset: q.Offset}
	p.DefaultPage()
	return p
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Items []*entity.StockMovement `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un artículo bajo el umbral.
type ReplenishmentSuggestionDTO struct {
	ItemID             string          `json:"item_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	CurrentStock       int             `json:"current_stock"`
	Threshold          int             `json:"threshold"`
	IdealStock         int             `json:"ideal_stock"`
	SuggestedOrderQty  int             `json:"suggested_order_qty"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	UnitsReserved      int             `json:"units_reserved_90d"`
	Priority           int             `json:"priority"`
}

// SettingsDTO ajustes de la tienda (GET/PUT /api/settings).
type SettingsDTO struct {
	LowStockThreshold int `json:"low_stock_threshold" validate:"min=0"`
}

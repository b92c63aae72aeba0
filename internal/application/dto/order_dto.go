package dto

// OrderLineRequest línea del carrito.
type OrderLineRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0,max=2147483647"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	LocationID string             `json:"location_id" validate:"required"`
	Status     string             `json:"status" validate:"omitempty,oneof=pending processing"`
	Lines      []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

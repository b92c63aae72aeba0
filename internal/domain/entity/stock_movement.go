package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIncrease = "increase" // entrada
	MovementTypeDecrease = "decrease" // salida
)

// Motivos que registra el ledger por sí mismo.
const (
	ReasonOrderReservation  = "Order reservation"
	ReasonOrderCancellation = "Order cancellation"
	ReasonInitialStock      = "Initial stock"
)

// StockMovement registro de auditoría de un cambio de stock. Inmutable una vez creado;
// solo se elimina al cancelarlo, lo que revierte su efecto sobre el stock.
type StockMovement struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	LocationID string    `json:"location_id"`
	Type       string    `json:"type"`     // increase, decrease
	Quantity   int       `json:"quantity"` // siempre positivo; el signo lo da Type
	Reason     string    `json:"reason"`
	OrderID    string    `json:"order_id,omitempty"`
	Date       time.Time `json:"date"`
}

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	return t == MovementTypeIncrease || t == MovementTypeDecrease
}

// Delta devuelve el efecto firmado del movimiento sobre el stock.
func (m StockMovement) Delta() int {
	if m.Type == MovementTypeDecrease {
		return -m.Quantity
	}
	return m.Quantity
}

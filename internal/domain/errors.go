package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrItemNotFound      = errors.New("artículo no encontrado")
	ErrLocationNotFound  = errors.New("ubicación no encontrada")
	ErrMovementNotFound  = errors.New("movimiento de stock no encontrado")
	ErrOrderNotFound     = errors.New("pedido no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
)

// IsNotFound agrupa los errores de recurso inexistente.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrLocationNotFound) ||
		errors.Is(err, ErrMovementNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

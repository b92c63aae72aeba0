package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

// GlobalStoreKey clave de la tienda global (sin tenant).
const GlobalStoreKey = "global"

// StoreKey devuelve la clave de persistencia de la tienda del tenant; vacío = global.
func StoreKey(tenantID string) string {
	if tenantID == "" {
		return GlobalStoreKey
	}
	return "tenant:" + tenantID
}

// StateStore define el puerto de persistencia del estado del ledger: un documento por tienda.
// La implementación vive en infrastructure (memory, redis, postgres).
type StateStore interface {
	// Load devuelve el estado de la tienda; si no existe, un estado vacío.
	Load(ctx context.Context, key string) (*ledger.State, error)

	// Update carga el estado, ejecuta fn y persiste el resultado de forma atómica.
	// Si fn retorna error no se persiste nada y el error se propaga tal cual.
	Update(ctx context.Context, key string, fn func(*ledger.State) error) error
}

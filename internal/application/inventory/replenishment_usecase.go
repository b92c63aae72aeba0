package inventory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

// demandWindow ventana de reservas usada para priorizar la reposición.
const demandWindow = 90 * 24 * time.Hour

// ReplenishmentSuggestion artículo bajo el umbral con la cantidad sugerida de pedido.
type ReplenishmentSuggestion struct {
	ItemID             string
	SKU                string
	Name               string
	CurrentStock       int
	Threshold          int
	IdealStock         int // ceil(Threshold * 1.5)
	SuggestedOrderQty  int // IdealStock - CurrentStock, mínimo 0
	UnitPrice          decimal.Decimal
	EstimatedOrderCost decimal.Decimal // SuggestedOrderQty * UnitPrice
	UnitsReserved      int             // reservas netas de pedidos en la ventana
	Priority           int             // 1 = más urgente
}

// ReplenishmentUseCase genera la lista de reposición de una tienda a partir del stock
// actual y de la demanda registrada por los pedidos.
type ReplenishmentUseCase struct {
	ledgers *LedgerService
	now     func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(ledgers *LedgerService) *ReplenishmentUseCase {
	now := time.Now
	if ledgers.cfg.Now != nil {
		now = ledgers.cfg.Now
	}
	return &ReplenishmentUseCase{ledgers: ledgers, now: now}
}

// GenerateReplenishmentList devuelve los artículos con stock <= threshold (threshold < 0 usa
// el umbral de la tienda). locationID vacío considera el stock total; si no, solo esa ubicación.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, tenantID, locationID string, threshold int) ([]ReplenishmentSuggestion, error) {
	var out []ReplenishmentSuggestion
	err := uc.ledgers.View(ctx, tenantID, func(l *ledger.Ledger) error {
		if locationID != "" {
			if _, err := l.Location(locationID); err != nil {
				return err
			}
		}
		if threshold < 0 {
			threshold = l.State().Settings.LowStockThreshold
		}
		if threshold < 0 {
			return fmt.Errorf("inventory: umbral %d: %w", threshold, domain.ErrInvalidInput)
		}

		demand := reservedSince(l.State().Movements, locationID, uc.now().Add(-demandWindow))
		ideal := int(math.Ceil(float64(threshold) * 1.5))

		for _, it := range l.Items() {
			current := it.TotalStock()
			if locationID != "" {
				current = it.StockAt(locationID)
			}
			if current > threshold {
				continue
			}
			qty := ideal - current
			if qty < 0 {
				qty = 0
			}
			out = append(out, ReplenishmentSuggestion{
				ItemID:             it.ID,
				SKU:                it.SKU,
				Name:               it.Name,
				CurrentStock:       current,
				Threshold:          threshold,
				IdealStock:         ideal,
				SuggestedOrderQty:  qty,
				UnitPrice:          it.Price,
				EstimatedOrderCost: it.Price.Mul(decimal.NewFromInt(int64(qty))),
				UnitsReserved:      demand[it.ID],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Primero mayor demanda, luego mayor déficit; SKU como desempate estable.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UnitsReserved != b.UnitsReserved {
			return a.UnitsReserved > b.UnitsReserved
		}
		if a.SuggestedOrderQty != b.SuggestedOrderQty {
			return a.SuggestedOrderQty > b.SuggestedOrderQty
		}
		return a.SKU < b.SKU
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

// reservedSince reservas menos liberaciones de pedidos por artículo desde since.
func reservedSince(movs []*entity.StockMovement, locationID string, since time.Time) map[string]int {
	out := map[string]int{}
	for _, m := range movs {
		if m.OrderID == "" || m.Date.Before(since) {
			continue
		}
		if locationID != "" && m.LocationID != locationID {
			continue
		}
		out[m.ItemID] -= m.Delta()
	}
	return out
}

package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func TestReplenishment_SugiereHastaStockIdeal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, false)
	locID, itemID := seed(t, svc, 3)

	uc := inventory.NewReplenishmentUseCase(svc)
	list, err := uc.GenerateReplenishmentList(ctx, tenant, "", 4)
	require.NoError(t, err)
	require.Len(t, list, 1)

	s := list[0]
	assert.Equal(t, itemID, s.ItemID)
	assert.Equal(t, 3, s.CurrentStock)
	assert.Equal(t, 6, s.IdealStock)
	assert.Equal(t, 3, s.SuggestedOrderQty)
	assert.True(t, decimal.RequireFromString("37.50").Equal(s.EstimatedOrderCost))
	assert.Equal(t, 1, s.Priority)

	byLoc, err := uc.GenerateReplenishmentList(ctx, tenant, locID, 2)
	require.NoError(t, err)
	assert.Empty(t, byLoc, "3 > 2 en la ubicación")
}

func TestReplenishment_PriorizaPorReservas(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, false)
	locID, rosaID := seed(t, svc, 5)
	abono, err := svc.CreateItem(ctx, tenant, ledger.NewItem{
		SKU: "ABONO", Name: "Abono", Price: decimal.NewFromInt(3),
		InitialStock: map[string]int{locID: 1},
	})
	require.NoError(t, err)

	err = svc.Mutate(ctx, tenant, func(l *ledger.Ledger) error {
		_, err := l.ReserveStock([]ledger.Line{{ItemID: rosaID, Quantity: 2}}, locID, "order-1")
		return err
	})
	require.NoError(t, err)

	list, err := inventory.NewReplenishmentUseCase(svc).GenerateReplenishmentList(ctx, tenant, "", 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, rosaID, list[0].ItemID, "la demanda de pedidos va primero")
	assert.Equal(t, 2, list[0].UnitsReserved)
	assert.Equal(t, abono.ID, list[1].ItemID)
	assert.Equal(t, 2, list[1].Priority)
}

func TestReplenishment_UmbralDeLaTienda(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, false)
	seed(t, svc, 3)

	_, err := svc.UpdateSettings(ctx, tenant, ledger.Settings{LowStockThreshold: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateSettings(ctx, tenant, ledger.Settings{LowStockThreshold: 3})
	require.NoError(t, err)
	st, err := svc.Settings(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, 3, st.LowStockThreshold)

	list, err := inventory.NewReplenishmentUseCase(svc).GenerateReplenishmentList(ctx, tenant, "", -1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].IdealStock)

	_, err = inventory.NewReplenishmentUseCase(svc).GenerateReplenishmentList(ctx, tenant, "nope", -1)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const tenant = "acme"

func newService(t *testing.T, allowNegative bool) (*inventory.LedgerService, *memory.StateStore) {
	t.Helper()
	n := 0
	store := memory.NewStateStore()
	svc := inventory.NewLedgerService(store, logger.Nop(), inventory.Config{
		AllowNegativeStock: allowNegative,
		Now:                func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID:              func() string { n++; return fmt.Sprintf("id-%d", n) },
	})
	return svc, store
}

func seed(t *testing.T, svc *inventory.LedgerService, qty int) (locID, itemID string) {
	t.Helper()
	ctx := context.Background()
	loc, err := svc.CreateLocation(ctx, tenant, "Principal", "")
	require.NoError(t, err)
	it, err := svc.CreateItem(ctx, tenant, ledger.NewItem{
		SKU: "ROSA-01", Name: "Rosal", Price: decimal.RequireFromString("12.50"),
		InitialStock: map[string]int{loc.ID: qty},
	})
	require.NoError(t, err)
	return loc.ID, it.ID
}

func TestLedgerService_MovimientoPersisteEnLaTiendaDelTenant(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, false)
	locID, itemID := seed(t, svc, 10)

	mov, err := svc.RecordMovement(ctx, tenant, ledger.MovementInput{
		ItemID: itemID, LocationID: locID, Type: entity.MovementTypeDecrease, Quantity: 4, Reason: "Merma",
	})
	require.NoError(t, err)
	assert.Equal(t, "Merma", mov.Reason)

	it, err := svc.GetItem(ctx, tenant, itemID)
	require.NoError(t, err)
	assert.Equal(t, 6, it.StockAt(locID))

	assert.NotNil(t, store.Raw("tenant:"+tenant))
	assert.Nil(t, store.Raw("global"), "la tienda global no se toca")

	_, err = svc.GetItem(ctx, "", itemID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestLedgerService_RechazoNoPersiste(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, false)
	locID, itemID := seed(t, svc, 2)

	_, err := svc.AdjustStock(ctx, tenant, itemID, locID, -5)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	it, err := svc.GetItem(ctx, tenant, itemID)
	require.NoError(t, err)
	assert.Equal(t, 2, it.StockAt(locID))
}

func TestLedgerService_PermiteNegativoSegunConfig(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, true)
	locID, itemID := seed(t, svc, 2)

	it, err := svc.AdjustStock(ctx, tenant, itemID, locID, -5)
	require.NoError(t, err)
	assert.Equal(t, -3, it.StockAt(locID))
}

func TestLedgerService_CancelMovement(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, false)
	locID, itemID := seed(t, svc, 10)

	mov, err := svc.RecordMovement(ctx, tenant, ledger.MovementInput{
		ItemID: itemID, LocationID: locID, Type: entity.MovementTypeIncrease, Quantity: 5,
	})
	require.NoError(t, err)

	_, err = svc.CancelMovement(ctx, tenant, mov.ID)
	require.NoError(t, err)

	it, err := svc.GetItem(ctx, tenant, itemID)
	require.NoError(t, err)
	assert.Equal(t, 10, it.StockAt(locID))

	_, err = svc.CancelMovement(ctx, tenant, mov.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}

func TestLedgerService_ListMovementsYLowStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, false)
	locID, itemID := seed(t, svc, 3)

	movs, total, err := svc.ListMovements(ctx, tenant, ledger.MovementFilter{ItemID: itemID, LocationID: locID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, entity.ReasonInitialStock, movs[0].Reason)

	low, err := svc.LowStock(ctx, tenant, 5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, itemID, low[0].ID)

	locs, err := svc.ListLocations(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, locs, 1)

	items, err := svc.ListItems(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestLedgerService_MutateErrorSePropaga(t *testing.T) {
	svc, store := newService(t, false)
	boom := errors.New("boom")
	err := svc.Mutate(context.Background(), tenant, func(l *ledger.Ledger) error {
		_, _ = l.AddLocation("X", "")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, store.Raw("tenant:"+tenant))
}

package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func TestStockRows_OrdenDeterminista(t *testing.T) {
	st := ledger.NewState()
	st.Items["b"] = &entity.Item{ID: "b", SKU: "SKU-B", Price: decimal.RequireFromString("9.90"), Stock: map[string]int{"loc2": 1, "loc1": 4}}
	st.Items["a"] = &entity.Item{ID: "a", SKU: "SKU-A", Price: decimal.NewFromInt(3), Stock: map[string]int{"loc1": -2}}

	rows := stockRows("tenant:t", st)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"tenant:t", "a", "SKU-A", "loc1", -2, decimal.NewFromInt(3)}, rows[0])
	assert.Equal(t, "loc1", rows[1][3])
	assert.Equal(t, "loc2", rows[2][3])
}

func TestStockRows_SinArticulos(t *testing.T) {
	assert.Empty(t, stockRows("global", ledger.NewState()))
}

package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/orders"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de la API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	svc := inventory.NewLedgerService(memory.NewStateStore(), logger.Nop(), inventory.Config{})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:        svc,
		Replenishment: inventory.NewReplenishmentUseCase(svc),
		Orders:        orders.NewOrderUseCase(svc),
		JWTSecret:     testJWTSecret,
	})
	return app
}

// call envía la petición con el rol indicado y decodifica el cuerpo en out (si no es nil).
func call(t *testing.T, app *fiber.App, role, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type idBody struct {
	ID string `json:"id"`
}

type itemBody struct {
	ID         string         `json:"id"`
	Stock      map[string]int `json:"stock"`
	TotalStock int            `json:"total_stock"`
}

type errBody struct {
	Code string `json:"code"`
}

// seedAPI crea loc1 y un artículo con 10 unidades; devuelve sus IDs.
func seedAPI(t *testing.T, app *fiber.App) (string, string) {
	t.Helper()
	var loc idBody
	require.Equal(t, http.StatusCreated, call(t, app, "admin", http.MethodPost, "/api/locations",
		map[string]any{"name": "loc1"}, &loc))
	var it itemBody
	require.Equal(t, http.StatusCreated, call(t, app, "admin", http.MethodPost, "/api/items",
		map[string]any{"sku": "A", "name": "Artículo A", "price": "2.50", "initial_stock": map[string]int{loc.ID: 10}}, &it))
	require.Equal(t, 10, it.TotalStock)
	return loc.ID, it.ID
}

func getStock(t *testing.T, app *fiber.App, itemID, locID string) int {
	t.Helper()
	var it itemBody
	require.Equal(t, http.StatusOK, call(t, app, "vendedor", http.MethodGet, "/api/items/"+itemID, nil, &it))
	return it.Stock[locID]
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_PedidoReservaYCancelacionLibera(t *testing.T) {
	app := newAPI(t)
	locID, itemID := seedAPI(t, app)

	var order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Total  string `json:"total"`
	}
	require.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/orders", map[string]any{
		"location_id": locID,
		"lines":       []map[string]any{{"item_id": itemID, "quantity": 3}},
	}, &order))
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "7.5", order.Total)

	assert.Equal(t, http.StatusOK, call(t, app, "bodeguero", http.MethodPatch, "/api/orders/"+order.ID+"/status",
		map[string]string{"status": "processing"}, nil))
	assert.Equal(t, 7, getStock(t, app, itemID, locID))

	assert.Equal(t, http.StatusOK, call(t, app, "bodeguero", http.MethodPatch, "/api/orders/"+order.ID+"/status",
		map[string]string{"status": "cancelled"}, nil))
	assert.Equal(t, 10, getStock(t, app, itemID, locID))

	var page struct {
		Items []struct {
			Type string `json:"type"`
		} `json:"items"`
		Page struct {
			Total int `json:"total"`
		} `json:"page"`
	}
	require.Equal(t, http.StatusOK, call(t, app, "vendedor", http.MethodGet,
		"/api/inventory/movements?order_id="+order.ID, nil, &page))
	assert.Equal(t, 2, page.Page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "increase", page.Items[0].Type)

	var e errBody
	assert.Equal(t, http.StatusConflict, call(t, app, "admin", http.MethodPatch, "/api/orders/"+order.ID+"/status",
		map[string]string{"status": "processing"}, &e))
	assert.Equal(t, "INVALID_TRANSITION", e.Code)
}

func TestAPI_StockInsuficienteRetorna409(t *testing.T) {
	app := newAPI(t)
	locID, itemID := seedAPI(t, app)

	var e errBody
	assert.Equal(t, http.StatusConflict, call(t, app, "admin", http.MethodPost, "/api/inventory/movements", map[string]any{
		"item_id": itemID, "location_id": locID, "type": "decrease", "quantity": 11,
	}, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.Equal(t, 10, getStock(t, app, itemID, locID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos manuales, ajustes y stock bajo
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_MovimientoManualYCancelacion(t *testing.T) {
	app := newAPI(t)
	locID, itemID := seedAPI(t, app)

	var mov idBody
	require.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/inventory/movements", map[string]any{
		"item_id": itemID, "location_id": locID, "type": "decrease", "quantity": 4, "reason": "Merma",
	}, &mov))
	assert.Equal(t, 6, getStock(t, app, itemID, locID))

	assert.Equal(t, http.StatusOK, call(t, app, "bodeguero", http.MethodDelete, "/api/inventory/movements/"+mov.ID, nil, nil))
	assert.Equal(t, 10, getStock(t, app, itemID, locID))

	var e errBody
	assert.Equal(t, http.StatusNotFound, call(t, app, "bodeguero", http.MethodDelete, "/api/inventory/movements/"+mov.ID, nil, &e))
	assert.Equal(t, "NOT_FOUND", e.Code)
}

func TestAPI_AjusteYStockBajo(t *testing.T) {
	app := newAPI(t)
	locID, itemID := seedAPI(t, app)

	var it itemBody
	require.Equal(t, http.StatusOK, call(t, app, "admin", http.MethodPost, "/api/inventory/adjust", map[string]any{
		"item_id": itemID, "location_id": locID, "delta": -8,
	}, &it))
	assert.Equal(t, 2, it.TotalStock)

	var low []itemBody
	require.Equal(t, http.StatusOK, call(t, app, "vendedor", http.MethodGet, "/api/items/low-stock?threshold=2", nil, &low))
	require.Len(t, low, 1)
	assert.Equal(t, itemID, low[0].ID)

	low = nil
	require.Equal(t, http.StatusOK, call(t, app, "vendedor", http.MethodGet, "/api/items/low-stock?threshold=1", nil, &low))
	assert.Empty(t, low)
}

func TestAPI_AjustesYReposicion(t *testing.T) {
	app := newAPI(t)
	_, itemID := seedAPI(t, app)

	assert.Equal(t, http.StatusForbidden, call(t, app, "bodeguero", http.MethodPut, "/api/settings",
		map[string]int{"low_stock_threshold": 10}, nil), "solo admin cambia ajustes")
	assert.Equal(t, http.StatusOK, call(t, app, "admin", http.MethodPut, "/api/settings",
		map[string]int{"low_stock_threshold": 10}, nil))

	var st struct {
		LowStockThreshold int `json:"low_stock_threshold"`
	}
	require.Equal(t, http.StatusOK, call(t, app, "vendedor", http.MethodGet, "/api/settings", nil, &st))
	assert.Equal(t, 10, st.LowStockThreshold)

	var low []itemBody
	require.Equal(t, http.StatusOK, call(t, app, "vendedor", http.MethodGet, "/api/items/low-stock", nil, &low))
	require.Len(t, low, 1)

	var rep struct {
		Total          int `json:"total"`
		Replenishments []struct {
			ItemID            string `json:"item_id"`
			SuggestedOrderQty int    `json:"suggested_order_qty"`
			EstimatedCost     string `json:"estimated_order_cost"`
		} `json:"replenishments"`
	}
	require.Equal(t, http.StatusOK, call(t, app, "vendedor", http.MethodGet, "/api/inventory/replenishment-list", nil, &rep))
	require.Equal(t, 1, rep.Total)
	assert.Equal(t, itemID, rep.Replenishments[0].ItemID)
	assert.Equal(t, 5, rep.Replenishments[0].SuggestedOrderQty)
	assert.Equal(t, "12.5", rep.Replenishments[0].EstimatedCost)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación, permisos y aislamiento por tenant
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ValidacionDeCuerpo(t *testing.T) {
	app := newAPI(t)
	locID, itemID := seedAPI(t, app)

	var e errBody
	assert.Equal(t, http.StatusBadRequest, call(t, app, "admin", http.MethodPost, "/api/inventory/movements", map[string]any{
		"item_id": itemID, "location_id": locID, "type": "transfer", "quantity": 1,
	}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, app, "admin", http.MethodPost, "/api/orders", map[string]any{
		"location_id": locID, "lines": []map[string]any{},
	}, nil))

	assert.Equal(t, http.StatusNotFound, call(t, app, "admin", http.MethodGet, "/api/items/no-existe", nil, nil))
	assert.Equal(t, http.StatusConflict, call(t, app, "admin", http.MethodPost, "/api/items",
		map[string]any{"sku": "a", "name": "dup", "price": "1"}, nil))
}

func TestAPI_VendedorSoloLectura(t *testing.T) {
	app := newAPI(t)
	seedAPI(t, app)

	var e errBody
	assert.Equal(t, http.StatusForbidden, call(t, app, "vendedor", http.MethodPost, "/api/locations",
		map[string]any{"name": "otra"}, &e))
	assert.Equal(t, "FORBIDDEN", e.Code)

	var locs []idBody
	assert.Equal(t, http.StatusOK, call(t, app, "vendedor", http.MethodGet, "/api/locations", nil, &locs))
	assert.Len(t, locs, 1)
}

func TestAPI_TenantsAislados(t *testing.T) {
	app := newAPI(t)
	seedAPI(t, app)

	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "otra-empresa", "admin", testIssuer, testExpMin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var items []itemBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, items)
}

func TestAPI_CantidadFueraDeRangoRetorna400(t *testing.T) {
	app := newAPI(t)
	locID, itemID := seedAPI(t, app)

	var e errBody
	assert.Equal(t, http.StatusBadRequest, call(t, app, "admin", http.MethodPost, "/api/inventory/movements", map[string]any{
		"item_id": itemID, "location_id": locID, "type": "increase", "quantity": int64(math.MaxInt32) + 1,
	}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	// el delta pasa la validación del cuerpo pero el nivel resultante excede la cota
	e = errBody{}
	assert.Equal(t, http.StatusBadRequest, call(t, app, "admin", http.MethodPost, "/api/inventory/adjust", map[string]any{
		"item_id": itemID, "location_id": locID, "delta": math.MaxInt32,
	}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	e = errBody{}
	assert.Equal(t, http.StatusBadRequest, call(t, app, "admin", http.MethodPost, "/api/orders", map[string]any{
		"location_id": locID, "lines": []map[string]any{{"item_id": itemID, "quantity": int64(math.MaxInt64)}},
	}, &e))

	assert.Equal(t, 10, getStock(t, app, itemID, locID))
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/orders"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.LedgerService
	Replenishment *inventory.ReplenishmentUseCase
	Orders        *orders.OrderUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token; escribir exige admin o bodeguero.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writer := RequireRole(RoleAdmin, RoleBodeguero)

	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.Ledger)
	locations.Post("/", writer, locationHandler.Create)
	locations.Get("/", locationHandler.List)

	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.Ledger)
	items.Post("/", writer, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/low-stock", itemHandler.LowStock)
	items.Get("/:id", itemHandler.GetByID)

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Replenishment)
	invGroup.Post("/adjust", writer, inventoryHandler.Adjust)
	invGroup.Post("/movements", writer, inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Delete("/movements/:id", writer, inventoryHandler.CancelMovement)
	invGroup.Get("/replenishment-list", inventoryHandler.GetReplenishmentList)

	settings := protected.Group("/settings")
	settings.Get("/", inventoryHandler.GetSettings)
	settings.Put("/", RequireRole(RoleAdmin), inventoryHandler.UpdateSettings)

	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	ordersGroup.Post("/", writer, orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Patch("/:id/status", writer, orderHandler.UpdateStatus)
}

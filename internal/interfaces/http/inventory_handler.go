package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

// InventoryHandler maneja ajustes y movimientos de stock.
type InventoryHandler struct {
	svc           *inventory.LedgerService
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc *inventory.LedgerService, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{svc: svc, replenishment: replenishment}
}

// Adjust godoc
// @Summary      Ajuste crudo de stock
// @Description  Suma delta al stock del artículo en la ubicación sin registrar movimiento.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "item_id, location_id, delta"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if done, err := validateStruct(c, in); done {
		return err
	}
	it, err := h.svc.AdjustStock(c.Context(), GetCompanyID(c), in.ItemID, in.LocationID, in.Delta)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemResponse(it))
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "item_id, location_id, type (increase|decrease), quantity, reason"
// @Success      201   {object}  entity.StockMovement
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if done, err := validateStruct(c, in); done {
		return err
	}
	mov, err := h.svc.RecordMovement(c.Context(), GetCompanyID(c), ledger.MovementInput{
		ItemID:     in.ItemID,
		LocationID: in.LocationID,
		Type:       in.Type,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mov)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Description  Más reciente primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por artículo"
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        type         query  string  false  "increase | decrease"
// @Param        order_id     query  string  false  "Filtrar por pedido"
// @Param        limit        query  int     false  "Máximo 100"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.ListMovementsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if done, err := validateStruct(c, q); done {
		return err
	}
	page := q.Page()
	movs, total, err := h.svc.ListMovements(c.Context(), GetCompanyID(c), ledger.MovementFilter{
		ItemID:     q.ItemID,
		LocationID: q.LocationID,
		Type:       q.Type,
		OrderID:    q.OrderID,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	if movs == nil {
		movs = []*entity.StockMovement{}
	}
	return c.JSON(dto.MovementListResponse{
		Items: movs,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// CancelMovement godoc
// @Summary      Cancelar movimiento
// @Description  Elimina el movimiento y revierte su efecto sobre el stock.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  entity.StockMovement
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) CancelMovement(c *fiber.Ctx) error {
	mov, err := h.svc.CancelMovement(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mov)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Artículos con stock <= threshold y la cantidad sugerida hasta el stock ideal
//
//	(threshold * 1.5), ordenados por reservas de pedidos de los últimos 90 días.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación. Vacío = stock total."
// @Param        threshold    query  int     false  "Umbral. Sin valor usa el de la tienda."
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), GetCompanyID(c), c.Query("location_id"), c.QueryInt("threshold", -1))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ItemID:             s.ItemID,
			SKU:                s.SKU,
			Name:               s.Name,
			CurrentStock:       s.CurrentStock,
			Threshold:          s.Threshold,
			IdealStock:         s.IdealStock,
			SuggestedOrderQty:  s.SuggestedOrderQty,
			UnitPrice:          s.UnitPrice,
			EstimatedOrderCost: s.EstimatedOrderCost,
			UnitsReserved:      s.UnitsReserved,
			Priority:           s.Priority,
		})
	}
	return c.JSON(fiber.Map{
		"total":          len(out),
		"replenishments": out,
	})
}

// GetSettings godoc
// @Summary      Ajustes de la tienda
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SettingsDTO
// @Router       /api/settings [get]
func (h *InventoryHandler) GetSettings(c *fiber.Ctx) error {
	st, err := h.svc.Settings(c.Context(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SettingsDTO{LowStockThreshold: st.LowStockThreshold})
}

// UpdateSettings godoc
// @Summary      Actualizar ajustes de la tienda
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SettingsDTO  true  "low_stock_threshold"
// @Success      200   {object}  dto.SettingsDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings [put]
func (h *InventoryHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.SettingsDTO
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if done, err := validateStruct(c, in); done {
		return err
	}
	st, err := h.svc.UpdateSettings(c.Context(), GetCompanyID(c), ledger.Settings{LowStockThreshold: in.LowStockThreshold})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SettingsDTO{LowStockThreshold: st.LowStockThreshold})
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/orders"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// OrderHandler maneja pedidos y sus transiciones de estado.
type OrderHandler struct {
	uc *orders.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido
// @Description  status vacío = pending. Un pedido creado en processing reserva stock.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "location_id, status, lines"
// @Success      201   {object}  entity.Order
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if done, err := validateStruct(c, in); done {
		return err
	}
	lines := make([]orders.LineInput, 0, len(in.Lines))
	for _, ln := range in.Lines {
		lines = append(lines, orders.LineInput{ItemID: ln.ItemID, Quantity: ln.Quantity})
	}
	o, err := h.uc.CreateOrder(c.Context(), orders.CreateOrderInput{
		TenantID:   GetCompanyID(c),
		UserID:     GetUserID(c),
		LocationID: in.LocationID,
		Lines:      lines,
		Status:     in.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | processing | completed | cancelled"
// @Success      200  {array}  entity.Order
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListOrders(c.Context(), GetCompanyID(c), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []*entity.Order{}
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  entity.Order
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.uc.GetOrder(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Description  pending→processing reserva stock; processing→cancelled lo libera.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "status"
// @Success      200   {object}  entity.Order
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if done, err := validateStruct(c, in); done {
		return err
	}
	o, err := h.uc.UpdateStatus(c.Context(), GetCompanyID(c), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

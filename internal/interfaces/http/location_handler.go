package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// LocationHandler maneja las ubicaciones de la tienda del tenant.
type LocationHandler struct {
	svc *inventory.LedgerService
}

// NewLocationHandler construye el handler.
func NewLocationHandler(svc *inventory.LedgerService) *LocationHandler {
	return &LocationHandler{svc: svc}
}

// Create godoc
// @Summary      Crear ubicación
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "name, address"
// @Success      201   {object}  entity.Location
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if done, err := validateStruct(c, in); done {
		return err
	}
	loc, err := h.svc.CreateLocation(c.Context(), GetCompanyID(c), in.Name, in.Address)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(loc)
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  entity.Location
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	list, err := h.svc.ListLocations(c.Context(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

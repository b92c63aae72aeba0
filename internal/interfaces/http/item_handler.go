package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

// ItemHandler maneja el catálogo de artículos y su stock.
type ItemHandler struct {
	svc *inventory.LedgerService
}

// NewItemHandler construye el handler.
func NewItemHandler(svc *inventory.LedgerService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

func toItemResponse(it *entity.Item) dto.ItemResponse {
	stock := it.Stock
	if stock == nil {
		stock = map[string]int{}
	}
	return dto.ItemResponse{
		ID:         it.ID,
		SKU:        it.SKU,
		Name:       it.Name,
		Price:      it.Price,
		Stock:      stock,
		TotalStock: it.TotalStock(),
	}
}

func toItemResponses(items []*entity.Item) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out
}

// Create godoc
// @Summary      Crear artículo
// @Description  El stock inicial por ubicación queda registrado como movimientos de entrada.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "sku, name, price, initial_stock"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if done, err := validateStruct(c, in); done {
		return err
	}
	it, err := h.svc.CreateItem(c.Context(), GetCompanyID(c), ledger.NewItem{
		SKU:          in.SKU,
		Name:         in.Name,
		Price:        in.Price,
		InitialStock: in.InitialStock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toItemResponse(it))
}

// List godoc
// @Summary      Listar artículos
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ItemResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	items, err := h.svc.ListItems(c.Context(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemResponses(items))
}

// GetByID godoc
// @Summary      Obtener artículo
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	it, err := h.svc.GetItem(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemResponse(it))
}

// LowStock godoc
// @Summary      Artículos con stock bajo
// @Description  Stock total menor o igual al umbral. Sin threshold usa el umbral de la tienda.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral de stock total"
// @Success      200  {array}  dto.ItemResponse
// @Router       /api/items/low-stock [get]
func (h *ItemHandler) LowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", -1)
	items, err := h.svc.LowStock(c.Context(), GetCompanyID(c), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemResponses(items))
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/inventory"
)

// InventoryHandler existencias, ajustes, bitácora y faltantes por sucursal (protegido).
type InventoryHandler struct {
	ledger    *inventory.LedgerUseCase
	shortages *inventory.ShortageUseCase
	log       zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, shortages *inventory.ShortageUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, shortages: shortages, log: log}
}

// ListStock godoc
// @Summary      Existencias de una sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (por defecto la del token)"
// @Param        limit      query  int     false  "Máximo 200"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	branchID := branchParam(c)
	page := pageParam(c)
	lines, err := h.ledger.ListStock(c.Context(), GetActor(c), branchID, page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.StockLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.NewStockLineDTO(l))
	}
	return c.JSON(fiber.Map{
		"branch_id": branchID,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
		"items":     out,
	})
}

// GetStock godoc
// @Summary      Existencia de un producto en una sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  path  string  true  "Sucursal"
// @Param        item_id    path  string  true  "Producto"
// @Success      200  {object}  dto.StockLineDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{branch_id}/{item_id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	line, err := h.ledger.Read(c.Context(), GetActor(c), c.Params("branch_id"), c.Params("item_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewStockLineDTO(line))
}

// AdjustStock godoc
// @Summary      Ajuste manual de existencias (todo o nada)
// @Description  Cada renglón lleva delta o counted_quantity (conteo físico).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustmentRequest  true  "branch_id, items"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.StockAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	movements, err := h.ledger.AdjustStock(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewMovementDTO(m))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movements": out})
}

// RegisterSale godoc
// @Summary      Registrar venta del POS
// @Description  Descuenta la cantidad vendida de la sucursal; falla con 409 si no hay existencia
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterSaleRequest  true  "branch_id, item_id, quantity, sale_id"
// @Success      201   {object}  dto.MovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) RegisterSale(c *fiber.Ctx) error {
	var in dto.RegisterSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.BranchID == "" {
		in.BranchID = GetBranchID(c)
	}
	mov, err := h.ledger.RegisterSale(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementDTO(mov))
}

// SetMinStock godoc
// @Summary      Configurar stock mínimo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetMinStockRequest  true  "branch_id, item_id, min_stock"
// @Success      200   {object}  dto.StockLineDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/min-stock [put]
func (h *InventoryHandler) SetMinStock(c *fiber.Ctx) error {
	var in dto.SetMinStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	line, err := h.ledger.SetMinStock(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewStockLineDTO(line))
}

// ListMovements godoc
// @Summary      Bitácora de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (por defecto la del token)"
// @Param        item_id    query  string  false  "Filtrar por producto"
// @Success      200  {array}   dto.MovementDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	list, err := h.ledger.ListMovements(c.Context(), GetActor(c), branchParam(c), c.Query("item_id"), pageParam(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementDTO(m))
	}
	return c.JSON(out)
}

// ListShortages godoc
// @Summary      Faltantes de una sucursal
// @Description  Productos por debajo del mínimo, con lo disponible en CEDIS y la solicitud abierta si existe.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (por defecto la del token)"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/shortages [get]
func (h *InventoryHandler) ListShortages(c *fiber.Ctx) error {
	branchID := branchParam(c)
	list, err := h.shortages.Detect(c.Context(), GetActor(c), branchID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.ShortageDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewShortageDTO(s))
	}
	return c.JSON(fiber.Map{"branch_id": branchID, "total": len(out), "shortages": out})
}

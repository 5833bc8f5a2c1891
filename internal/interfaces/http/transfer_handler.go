package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/transfer"
)

// TransferHandler despachos, recepción y consultas de traspasos (protegido).
type TransferHandler struct {
	engine    *transfer.Engine
	receiving *transfer.ReceivingUseCase
	queries   *transfer.QueryUseCase
	manifest  *transfer.ManifestUseCase
	log       zerolog.Logger
}

// NewTransferHandler construye el handler. manifest puede ser nil (sin remisión PDF).
func NewTransferHandler(
	engine *transfer.Engine,
	receiving *transfer.ReceivingUseCase,
	queries *transfer.QueryUseCase,
	manifest *transfer.ManifestUseCase,
	log zerolog.Logger,
) *TransferHandler {
	return &TransferHandler{engine: engine, receiving: receiving, queries: queries, manifest: manifest, log: log}
}

// DispatchDirect godoc
// @Summary      Dispersión directa origen → destino
// @Description  Debita todo el origen o nada y deja el traspaso en tránsito.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DispatchDirectInput  true  "origin_branch_id, destination_branch_id, lines"
// @Success      201   {object}  dto.TransferDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/dispersion [post]
func (h *TransferHandler) DispatchDirect(c *fiber.Ctx) error {
	var in dto.DispatchDirectInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.engine.DispatchDirect(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferDTO(t))
}

// DispatchFromRequests godoc
// @Summary      Despachar solicitudes aprobadas desde CEDIS
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DispatchFromRequestsInput  true  "request_ids (misma sucursal destino)"
// @Success      201   {object}  dto.TransferDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/from-requests [post]
func (h *TransferHandler) DispatchFromRequests(c *fiber.Ctx) error {
	var in dto.DispatchFromRequestsInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.engine.DispatchFromRequests(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferDTO(t))
}

// ConfirmReceipt godoc
// @Summary      Confirmar recepción en destino
// @Description  Renglones omitidos se dan por recibidos completos. Un segundo intento responde 409 ALREADY_RECEIVED.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del traspaso"
// @Param        body  body  dto.ConfirmReceiptInput  true  "lines: item_id, quantity_received"
// @Success      200   {object}  dto.TransferDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) ConfirmReceipt(c *fiber.Ctx) error {
	var in dto.ConfirmReceiptInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	t, err := h.receiving.ConfirmReceipt(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferDTO(t))
}

// Get godoc
// @Summary      Detalle de traspaso con renglones
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traspaso"
// @Success      200  {object}  dto.TransferDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.queries.Get(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferDTO(t))
}

// InTransit godoc
// @Summary      Traspasos en tránsito hacia una sucursal
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Destino (por defecto la del token)"
// @Success      200  {array}   dto.TransferDTO
// @Router       /api/transfers/in-transit [get]
func (h *TransferHandler) InTransit(c *fiber.Ctx) error {
	list, err := h.queries.InTransitByDestination(c.Context(), GetActor(c), branchParam(c), pageParam(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferDTOs(list))
}

// History godoc
// @Summary      Historial de traspasos de una sucursal
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (por defecto la del token)"
// @Param        side       query  string  false  "origin | destination (vacío: ambos)"
// @Param        state      query  string  false  "created | in_transit | received"
// @Param        limit      query  int     false  "Máximo 200"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/transfers/history [get]
func (h *TransferHandler) History(c *fiber.Ctx) error {
	page := pageParam(c)
	list, err := h.queries.History(c.Context(), GetActor(c), branchParam(c), c.Query("side"), c.Query("state"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
		"transfers": dto.NewTransferDTOs(list),
	})
}

// Discrepancies godoc
// @Summary      Diferencias de un traspaso recibido
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traspaso"
// @Success      200  {array}   dto.DiscrepancyDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/discrepancies [get]
func (h *TransferHandler) Discrepancies(c *fiber.Ctx) error {
	list, err := h.receiving.Discrepancies(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// Manifest godoc
// @Summary      Remisión PDF del traspaso
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del traspaso"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/manifest.pdf [get]
func (h *TransferHandler) Manifest(c *fiber.Ctx) error {
	if h.manifest == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "remisión no disponible"})
	}
	id := c.Params("id")
	pdf, err := h.manifest.Render(c.Context(), GetActor(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="remision-%s.pdf"`, id))
	return c.Send(pdf)
}

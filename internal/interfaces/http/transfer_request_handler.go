package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/application/transfer"
)

// TransferRequestHandler solicitudes de faltantes sucursal → CEDIS (protegido).
type TransferRequestHandler struct {
	uc  *transfer.RequestUseCase
	log zerolog.Logger
}

// NewTransferRequestHandler construye el handler.
func NewTransferRequestHandler(uc *transfer.RequestUseCase, log zerolog.Logger) *TransferRequestHandler {
	return &TransferRequestHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear solicitud de traspaso
// @Tags         transfer-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequestInput  true  "branch_id, item_id, quantity, urgency"
// @Success      201   {object}  dto.TransferRequestDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfer-requests [post]
func (h *TransferRequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequestInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.BranchID == "" {
		in.BranchID = GetBranchID(c)
	}
	req, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferRequestDTO(req))
}

// Approve godoc
// @Summary      Aprobar solicitud (CEDIS)
// @Tags         transfer-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la solicitud"
// @Param        body  body  dto.ApproveRequestInput  true  "quantity_approved"
// @Success      200   {object}  dto.TransferRequestDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfer-requests/{id}/approve [put]
func (h *TransferRequestHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequestInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	req, err := h.uc.Approve(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferRequestDTO(req))
}

// Reject godoc
// @Summary      Rechazar solicitud (CEDIS)
// @Tags         transfer-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "ID de la solicitud"
// @Param        body  body  dto.RejectRequestInput  false  "reason (por defecto: Sin stock)"
// @Success      200   {object}  dto.TransferRequestDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfer-requests/{id}/reject [put]
func (h *TransferRequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequestInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	req, err := h.uc.Reject(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferRequestDTO(req))
}

// Get godoc
// @Summary      Detalle de solicitud
// @Tags         transfer-requests
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.TransferRequestDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfer-requests/{id} [get]
func (h *TransferRequestHandler) Get(c *fiber.Ctx) error {
	req, err := h.uc.Get(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferRequestDTO(req))
}

// ListPending godoc
// @Summary      Solicitudes pendientes de una sucursal
// @Tags         transfer-requests
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (por defecto la del token)"
// @Success      200  {array}   dto.TransferRequestDTO
// @Router       /api/transfer-requests/pending [get]
func (h *TransferRequestHandler) ListPending(c *fiber.Ctx) error {
	list, err := h.uc.ListPendingByBranch(c.Context(), GetActor(c), branchParam(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferRequestDTOs(list))
}

// ListApproved godoc
// @Summary      Solicitudes aprobadas listas para despachar
// @Tags         transfer-requests
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal destino"
// @Success      200  {array}   dto.TransferRequestDTO
// @Router       /api/transfer-requests/approved [get]
func (h *TransferRequestHandler) ListApproved(c *fiber.Ctx) error {
	list, err := h.uc.ListApproved(c.Context(), GetActor(c), c.Query("branch_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferRequestDTOs(list))
}

// ListPendingByBranch godoc
// @Summary      Pendientes agrupadas por sucursal (vista CEDIS)
// @Tags         transfer-requests
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.PendingGroupDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/transfer-requests/pending/by-branch [get]
func (h *TransferRequestHandler) ListPendingByBranch(c *fiber.Ctx) error {
	groups, err := h.uc.ListPendingGroupedByBranch(c.Context(), GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(groups)
}

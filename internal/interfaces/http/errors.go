package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traspasos-api/internal/application/dto"
	"github.com/jhoicas/Traspasos-api/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string // vacío: usar el mensaje del error
}

// El orden importa: ErrInsufficientHubStock antes que cualquier otro 409.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrInsufficientHubStock, fiber.StatusConflict, "INSUFFICIENT_HUB_STOCK", ""},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", ""},
	{domain.ErrInvalidStateTransition, fiber.StatusConflict, "INVALID_STATE", ""},
	{domain.ErrAlreadyReceived, fiber.StatusConflict, "ALREADY_RECEIVED", ""},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", ""},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", ""},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrTransient, fiber.StatusServiceUnavailable, "TRANSIENT", "fallo transitorio, reintente"},
}

// respondError traduce errores de dominio a dto.ErrorResponse. Los 5xx se registran.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			if m.status >= fiber.StatusInternalServerError {
				log.Warn().Err(err).Str("path", c.Path()).Msg("error transitorio")
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// branchParam sucursal de la consulta; si falta se usa la del token.
func branchParam(c *fiber.Ctx) string {
	if b := strings.TrimSpace(c.Query("branch_id")); b != "" {
		return b
	}
	return GetBranchID(c)
}

func pageParam(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()
	return page
}

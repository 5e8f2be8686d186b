package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
)

// errInvalidBody se devuelve cuando el cuerpo no es JSON válido para el DTO.
var errInvalidBody = errors.New("cuerpo inválido")

type errorKind struct {
	err    error
	status int
	code   string
}

// Orden de evaluación: el primer kind que coincide con errors.Is gana.
var errorKinds = []errorKind{
	{errInvalidBody, fiber.StatusBadRequest, "INVALID_BODY"},
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrApprovalRequired, fiber.StatusForbidden, "APPROVAL_REQUIRED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrPositionNotFound, fiber.StatusNotFound, "POSITION_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrAlreadyCheckedOut, fiber.StatusConflict, "ALREADY_CHECKED_OUT"},
	{domain.ErrOverReturn, fiber.StatusConflict, "OVER_RETURN"},
	{domain.ErrReferenceConflict, fiber.StatusConflict, "REFERENCE_CONFLICT"},
	{domain.ErrNotReceivable, fiber.StatusConflict, "NOT_RECEIVABLE"},
	{domain.ErrNotDispatchable, fiber.StatusConflict, "NOT_DISPATCHABLE"},
	{domain.ErrNotCancellable, fiber.StatusConflict, "NOT_CANCELLABLE"},
	{domain.ErrShiftRequired, fiber.StatusConflict, "SHIFT_REQUIRED"},
	{domain.ErrUsernameTaken, fiber.StatusConflict, "USERNAME_TAKEN"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
}

// toErrorResponse traduce un error a status HTTP y cuerpo.
func toErrorResponse(err error) (int, dto.ErrorResponse) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, dto.ErrorResponse{Code: "HTTP_" + fiberCode(fe.Code), Message: fe.Message}
	}
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		body := dto.ErrorResponse{Code: k.code, Message: err.Error()}
		var le *domain.LineError
		if errors.As(err, &le) {
			if le.Line >= 0 {
				line := le.Line
				body.Line = &line
			}
			body.VariantID = le.VariantID
		}
		return k.status, body
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	}
	return "ERROR"
}

// NewErrorHandler es el ErrorHandler de la app: los handlers devuelven errores de dominio y aquí se traducen.
// Los 5xx se registran con el error original; al cliente solo llega un mensaje genérico.
func NewErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := toErrorResponse(err)
		if status >= fiber.StatusInternalServerError {
			log.Store(GetStoreID(c)).Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno en petición")
		}
		return c.Status(status).JSON(body)
	}
}


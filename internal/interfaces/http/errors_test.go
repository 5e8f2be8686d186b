package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
)

func TestToErrorResponse_StatusTable(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Invalid("qty"), fiber.StatusBadRequest, "VALIDATION"},
		{errInvalidBody, fiber.StatusBadRequest, "INVALID_BODY"},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
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
		{errors.New("conexión rota"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, body := toErrorResponse(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, body.Code, tc.err.Error())
	}
}

func TestToErrorResponse_LineErrorCarriesLineAndVariant(t *testing.T) {
	err := fmt.Errorf("checkout: %w", domain.NewLineError(domain.ErrInsufficientStock, 2, "v-9", "disponible 1"))

	status, body := toErrorResponse(err)

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.NotNil(t, body.Line)
	assert.Equal(t, 2, *body.Line)
	assert.Equal(t, "v-9", body.VariantID)
}

func TestToErrorResponse_LineMinusOneIsOmitted(t *testing.T) {
	_, body := toErrorResponse(domain.Invalid("sin líneas"))
	assert.Nil(t, body.Line)
	assert.Empty(t, body.VariantID)
}

func TestToErrorResponse_InternalHidesDetail(t *testing.T) {
	_, body := toErrorResponse(errors.New("pq: password authentication failed"))
	assert.NotContains(t, body.Message, "password")
}

func TestToErrorResponse_FiberError(t *testing.T) {
	status, body := toErrorResponse(fiber.ErrNotFound)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "HTTP_NOT_FOUND", body.Code)
}

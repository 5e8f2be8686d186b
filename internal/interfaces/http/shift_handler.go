package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/application/shift"
)

// ShiftHandler turnos de caja.
type ShiftHandler struct {
	svc *shift.Service
}

// NewShiftHandler construye el handler.
func NewShiftHandler(svc *shift.Service) *ShiftHandler {
	return &ShiftHandler{svc: svc}
}

// Open godoc
// @Summary      Abrir turno en la tienda
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenShiftRequest  true  "opening_cash"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/shifts/open [post]
func (h *ShiftHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	storeID, err := resolveStore(c, in.StoreID)
	if err != nil {
		return err
	}
	sh, err := h.svc.Open(c.UserContext(), shift.OpenInput{
		StoreID:     storeID,
		CashierID:   GetUserID(c),
		OpeningCash: in.OpeningCash,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toShiftResponse(sh, nil))
}

// Close godoc
// @Summary      Cerrar turno con el efectivo declarado
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Turno"
// @Param        body  body  dto.CloseShiftRequest  true  "declared_cash"
// @Success      200   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/close [post]
func (h *ShiftHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	sh, err := h.svc.Close(c.UserContext(), c.Params("id"), in.DeclaredCash)
	if err != nil {
		return err
	}
	movements, err := h.svc.CashMovements(c.UserContext(), sh.ID)
	if err != nil {
		return err
	}
	return c.JSON(toShiftResponse(sh, movements))
}

// Active godoc
// @Summary      Turno abierto de la tienda
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (admin/manager)"
// @Success      200       {object}  dto.ShiftResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/shifts/active [get]
func (h *ShiftHandler) Active(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	sh, err := h.svc.Active(c.UserContext(), storeID)
	if err != nil {
		return err
	}
	movements, err := h.svc.CashMovements(c.UserContext(), sh.ID)
	if err != nil {
		return err
	}
	return c.JSON(toShiftResponse(sh, movements))
}

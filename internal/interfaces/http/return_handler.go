package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/application/returns"
)

// ReturnHandler devoluciones y reembolsos.
type ReturnHandler struct {
	engine *returns.Engine
}

// NewReturnHandler construye el handler.
func NewReturnHandler(engine *returns.Engine) *ReturnHandler {
	return &ReturnHandler{engine: engine}
}

// Create godoc
// @Summary      Registrar devolución parcial
// @Description  Sobre el umbral de aprobación solo admin, manager o store_manager.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "invoice_id, refund_method, restock, lines"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	lines := make([]returns.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, returns.Line{InvoiceItemID: l.InvoiceItemID, Quantity: l.Quantity})
	}
	res, err := h.engine.Create(c.UserContext(), returns.Input{
		InvoiceID:    in.InvoiceID,
		Lines:        lines,
		RefundMethod: in.RefundMethod,
		Restock:      in.Restock,
		Reason:       in.Reason,
		ActorID:      GetUserID(c),
		ActorRole:    GetRole(c),
		Scope:        scopeOf(c),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toReturnResponse(res))
}

// Refund godoc
// @Summary      Reembolso total de una factura
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "Factura"
// @Param        body  body  dto.RefundRequest  true  "refund_method, restock"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/refund [post]
func (h *ReturnHandler) Refund(c *fiber.Ctx) error {
	var in dto.RefundRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	res, err := h.engine.RefundInvoice(c.UserContext(), returns.RefundInput{
		InvoiceID:    c.Params("id"),
		RefundMethod: in.RefundMethod,
		Restock:      in.Restock,
		Reason:       in.Reason,
		ActorID:      GetUserID(c),
		ActorRole:    GetRole(c),
		Scope:        scopeOf(c),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toReturnResponse(res))
}

// ListByInvoice godoc
// @Summary      Devoluciones de una factura
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Factura"
// @Success      200 {array}  dto.ReturnResponse
// @Router       /api/invoices/{id}/returns [get]
func (h *ReturnHandler) ListByInvoice(c *fiber.Ctx) error {
	list, err := h.engine.ListByInvoice(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReturnResponse(r))
	}
	return c.JSON(out)
}

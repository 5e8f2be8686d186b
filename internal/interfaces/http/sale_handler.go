package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger-api/internal/application/checkout"
	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
)

// SaleHandler caja: cobro, carritos en espera, facturas y ticket PDF.
type SaleHandler struct {
	engine   *checkout.Engine
	receipts *checkout.ReceiptUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(engine *checkout.Engine, receipts *checkout.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{engine: engine, receipts: receipts}
}

func (h *SaleHandler) cartInput(c *fiber.Ctx) (checkout.CartInput, error) {
	var in dto.CartRequest
	if err := c.BodyParser(&in); err != nil {
		return checkout.CartInput{}, errInvalidBody
	}
	storeID, err := resolveStore(c, in.StoreID)
	if err != nil {
		return checkout.CartInput{}, err
	}
	lines := make([]checkout.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, checkout.Line{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return checkout.CartInput{
		StoreID:       storeID,
		CashierID:     GetUserID(c),
		CustomerID:    in.CustomerID,
		PaymentMethod: in.PaymentMethod,
		Lines:         lines,
		Discount:      in.Discount,
		Tax:           in.Tax,
	}, nil
}

// Checkout godoc
// @Summary      Cobrar un carrito
// @Description  Congela precios y costos, crea la factura y descuenta stock. Todo o nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CartRequest  true  "payment_method, lines"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/checkout [post]
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	in, err := h.cartInput(c)
	if err != nil {
		return err
	}
	res, err := h.engine.Checkout(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toCheckoutResponse(res))
}

// Hold godoc
// @Summary      Poner un carrito en espera (reserva stock)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CartRequest  true  "lines"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/held-carts [post]
func (h *SaleHandler) Hold(c *fiber.Ctx) error {
	in, err := h.cartInput(c)
	if err != nil {
		return err
	}
	res, err := h.engine.Hold(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toCheckoutResponse(res))
}

// ListHeld godoc
// @Summary      Carritos en espera de la tienda
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (admin/manager)"
// @Success      200       {array}   dto.InvoiceResponse
// @Router       /api/held-carts [get]
func (h *SaleHandler) ListHeld(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	invoices, err := h.engine.ListHeld(c.UserContext(), storeID)
	if err != nil {
		return err
	}
	out := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv, nil))
	}
	return c.JSON(out)
}

// Resume godoc
// @Summary      Reanudar y cobrar un carrito en espera
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "Factura en espera"
// @Param        body  body  dto.ResumeRequest  true  "payment_method"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/held-carts/{id}/resume [post]
func (h *SaleHandler) Resume(c *fiber.Ctx) error {
	var in dto.ResumeRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	res, err := h.engine.Resume(c.UserContext(), checkout.ResumeInput{
		InvoiceID:     c.Params("id"),
		PaymentMethod: in.PaymentMethod,
		CashierID:     GetUserID(c),
		Scope:         scopeOf(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(toCheckoutResponse(res))
}

// CancelHeld godoc
// @Summary      Descartar un carrito en espera (libera la reserva)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Factura en espera"
// @Success      200 {object}  dto.InvoiceResponse
// @Failure      409 {object}  dto.ErrorResponse
// @Router       /api/held-carts/{id}/cancel [post]
func (h *SaleHandler) CancelHeld(c *fiber.Ctx) error {
	res, err := h.engine.CancelHeld(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toCheckoutResponse(res))
}

// GetInvoice godoc
// @Summary      Obtener factura con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Factura"
// @Success      200 {object}  dto.InvoiceResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *SaleHandler) GetInvoice(c *fiber.Ctx) error {
	res, err := h.engine.GetInvoice(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toCheckoutResponse(res))
}

// ReceiptPDF godoc
// @Summary      Ticket de venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "Factura"
// @Success      200 {file}    binary
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/receipt.pdf [get]
func (h *SaleHandler) ReceiptPDF(c *fiber.Ctx) error {
	doc, filename, err := h.receipts.Download(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(doc)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/application/transfer"
)

// TransferHandler traslados entre tiendas.
type TransferHandler struct {
	engine *transfer.Engine
}

// NewTransferHandler construye el handler.
func NewTransferHandler(engine *transfer.Engine) *TransferHandler {
	return &TransferHandler{engine: engine}
}

func transferLines(in []dto.TransferLineRequest) []transfer.Line {
	lines := make([]transfer.Line, 0, len(in))
	for _, l := range in {
		lines = append(lines, transfer.Line{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return lines
}

// Create godoc
// @Summary      Crear traslado (reserva en origen)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "to_store_id, lines"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	from, err := resolveStore(c, in.FromStoreID)
	if err != nil {
		return err
	}
	view, err := h.engine.Create(c.UserContext(), transfer.CreateInput{
		FromStoreID: from,
		ToStoreID:   in.ToStoreID,
		Notes:       in.Notes,
		ActorID:     GetUserID(c),
		Lines:       transferLines(in.Lines),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferViewResponse(view))
}

// List godoc
// @Summary      Traslados donde la tienda es origen o destino
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (admin/manager)"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {array}   dto.TransferResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	page := pageFrom(c)
	list, err := h.engine.List(c.UserContext(), storeID, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransferResponse(t, nil))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener traslado con líneas
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado"
// @Success      200 {object}  dto.TransferResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	view, err := h.engine.Get(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toTransferViewResponse(view))
}

// Dispatch godoc
// @Summary      Despachar traslado (descuenta en origen)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado"
// @Success      200 {object}  dto.TransferResponse
// @Failure      409 {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/dispatch [post]
func (h *TransferHandler) Dispatch(c *fiber.Ctx) error {
	view, err := h.engine.Dispatch(c.UserContext(), c.Params("id"), GetUserID(c), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toTransferViewResponse(view))
}

// Receive godoc
// @Summary      Recibir traslado en destino (total o parcial)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "Traslado"
// @Param        body  body  dto.ReceiveTransferRequest  false  "lines"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return errInvalidBody
		}
	}
	view, err := h.engine.Receive(c.UserContext(), transfer.ReceiveInput{
		TransferID: c.Params("id"),
		ActorID:    GetUserID(c),
		Lines:      transferLines(in.Lines),
		Scope:      scopeOf(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(toTransferViewResponse(view))
}

// Cancel godoc
// @Summary      Cancelar traslado pendiente (libera la reserva)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado"
// @Success      200 {object}  dto.TransferResponse
// @Failure      409 {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	view, err := h.engine.Cancel(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toTransferViewResponse(view))
}

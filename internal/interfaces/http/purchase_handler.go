package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/application/purchasing"
)

// PurchaseHandler órdenes de compra, recepciones y lotes.
type PurchaseHandler struct {
	engine *purchasing.Engine
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(engine *purchasing.Engine) *PurchaseHandler {
	return &PurchaseHandler{engine: engine}
}

// Create godoc
// @Summary      Crear orden de compra (borrador)
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "supplier_id, lines"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	storeID, err := resolveStore(c, in.StoreID)
	if err != nil {
		return err
	}
	lines := make([]purchasing.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, purchasing.OrderLine{VariantID: l.VariantID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	view, err := h.engine.CreateOrder(c.UserContext(), purchasing.CreateOrderInput{
		StoreID:    storeID,
		SupplierID: in.SupplierID,
		Notes:      in.Notes,
		ActorID:    GetUserID(c),
		Lines:      lines,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderViewResponse(view))
}

// Get godoc
// @Summary      Obtener orden con líneas y recepciones
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Orden"
// @Success      200 {object}  dto.PurchaseOrderResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	view, err := h.engine.GetOrder(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toOrderViewResponse(view))
}

// Submit godoc
// @Summary      Enviar orden al proveedor (draft → submitted)
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Orden"
// @Success      200 {object}  dto.PurchaseOrderResponse
// @Failure      400 {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/submit [post]
func (h *PurchaseHandler) Submit(c *fiber.Ctx) error {
	o, err := h.engine.Submit(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toOrderResponse(o, nil, nil))
}

// Approve godoc
// @Summary      Aprobar orden (submitted → approved)
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Orden"
// @Success      200 {object}  dto.PurchaseOrderResponse
// @Failure      400 {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/approve [post]
func (h *PurchaseHandler) Approve(c *fiber.Ctx) error {
	o, err := h.engine.Approve(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toOrderResponse(o, nil, nil))
}

// Cancel godoc
// @Summary      Cancelar orden sin recepciones
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Orden"
// @Success      200 {object}  dto.PurchaseOrderResponse
// @Failure      409 {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	o, err := h.engine.Cancel(c.UserContext(), c.Params("id"), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(toOrderResponse(o, nil, nil))
}

// Receive godoc
// @Summary      Recibir mercancía (idempotente por reference_id)
// @Description  Sin líneas recibe todo lo pendiente al costo vigente de cada línea.
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "Orden"
// @Param        body  body  dto.ReceiveRequest  false  "reference_id, lines"
// @Success      201   {object}  dto.ReceiveResponse
// @Success      200   {object}  dto.ReceiveResponse  "replay de una referencia ya procesada"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return errInvalidBody
		}
	}
	lines := make([]purchasing.ReceiveLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, purchasing.ReceiveLine{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			LotNumber: l.LotNumber,
			ExpiresAt: l.ExpiresAt,
		})
	}
	res, err := h.engine.Receive(c.UserContext(), purchasing.ReceiveInput{
		OrderID:     c.Params("id"),
		ReferenceID: in.ReferenceID,
		ActorID:     GetUserID(c),
		Lines:       lines,
		Scope:       scopeOf(c),
	})
	if err != nil {
		return err
	}
	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(toReceiveResponse(res))
}

// ListLots godoc
// @Summary      Lotes recibidos de una variante (vencimiento más próximo primero)
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        variantId  path   string  true   "Variante"
// @Param        store_id   query  string  false  "Tienda (admin/manager)"
// @Success      200        {array}   dto.LotResponse
// @Router       /api/lots/{variantId} [get]
func (h *PurchaseHandler) ListLots(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	lots, err := h.engine.ListLots(c.UserContext(), storeID, c.Params("variantId"))
	if err != nil {
		return err
	}
	return c.JSON(toLotResponses(lots))
}

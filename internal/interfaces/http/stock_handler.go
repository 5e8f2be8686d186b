package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
)

// StockHandler lectura de posiciones y movimientos del libro de inventario.
type StockHandler struct {
	svc *ledger.Service
}

// NewStockHandler construye el handler.
func NewStockHandler(svc *ledger.Service) *StockHandler {
	return &StockHandler{svc: svc}
}

// ListPositions godoc
// @Summary      Listar posiciones de stock de la tienda
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (admin/manager)"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {array}   dto.PositionResponse
// @Router       /api/stock [get]
func (h *StockHandler) ListPositions(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	page := pageFrom(c)
	positions, err := h.svc.ListPositions(c.UserContext(), storeID, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	out := make([]dto.PositionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPositionResponse(p))
	}
	return c.JSON(out)
}

// GetPosition godoc
// @Summary      Posición de una variante
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        variantId  path   string  true   "Variante"
// @Param        store_id   query  string  false  "Tienda (admin/manager)"
// @Success      200        {object}  dto.PositionResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/stock/{variantId} [get]
func (h *StockHandler) GetPosition(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	p, err := h.svc.GetPosition(c.UserContext(), storeID, c.Params("variantId"))
	if err != nil {
		return err
	}
	return c.JSON(toPositionResponse(p))
}

// EnsurePosition godoc
// @Summary      Crear la posición en cero si no existe
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        variantId  path  string                     true   "Variante"
// @Param        body       body  dto.EnsurePositionRequest  false  "store_id (admin/manager)"
// @Success      200        {object}  dto.PositionResponse
// @Router       /api/stock/{variantId}/ensure [post]
func (h *StockHandler) EnsurePosition(c *fiber.Ctx) error {
	var in dto.EnsurePositionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return errInvalidBody
		}
	}
	storeID, err := resolveStore(c, in.StoreID)
	if err != nil {
		return err
	}
	p, err := h.svc.EnsurePosition(c.UserContext(), storeID, c.Params("variantId"))
	if err != nil {
		return err
	}
	return c.JSON(toPositionResponse(p))
}

// ListMovements godoc
// @Summary      Movimientos de una posición (más recientes primero)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        variantId  path   string  true   "Variante"
// @Param        store_id   query  string  false  "Tienda (admin/manager)"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200        {array}   dto.MovementResponse
// @Router       /api/stock/{variantId}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	page := pageFrom(c)
	ms, err := h.svc.ListMovements(c.UserContext(), storeID, c.Params("variantId"), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(toMovementResponses(ms))
}

// Reconcile godoc
// @Summary      Cuadrar existencia contra la suma de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        variantId  path   string  true   "Variante"
// @Param        store_id   query  string  false  "Tienda (admin/manager)"
// @Success      200        {object}  dto.ReconcileResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/stock/{variantId}/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	rec, err := h.svc.Reconcile(c.UserContext(), storeID, c.Params("variantId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ReconcileResponse{
		StoreID:        rec.StoreID,
		VariantID:      rec.VariantID,
		Quantity:       rec.Quantity,
		Reserved:       rec.Reserved,
		MovementsTotal: rec.MovementsTotal,
		Balanced:       rec.Balanced,
	})
}

// CheckAvailable godoc
// @Summary      Consultar si hay cantidad disponible (sin reservar)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        variantId  path   string  true   "Variante"
// @Param        quantity   query  string  true   "Cantidad"
// @Param        store_id   query  string  false  "Tienda (admin/manager)"
// @Success      200        {object}  dto.AvailabilityResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Router       /api/stock/{variantId}/available [get]
func (h *StockHandler) CheckAvailable(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return domain.Invalid("quantity debe ser numérico")
	}
	variantID := c.Params("variantId")
	if err := h.svc.CheckAvailable(c.UserContext(), storeID, variantID, qty); err != nil {
		return err
	}
	return c.JSON(dto.AvailabilityResponse{StoreID: storeID, VariantID: variantID, Quantity: qty, Available: true})
}

// ListByReference godoc
// @Summary      Movimientos de un documento (factura, recepción, traslado o devolución)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        reference  query  string  true  "ID del documento"
// @Success      200        {array}   dto.MovementResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *StockHandler) ListByReference(c *fiber.Ctx) error {
	ref := c.Query("reference")
	if ref == "" {
		return domain.Invalid("reference es requerido")
	}
	ms, err := h.svc.ListByReference(c.UserContext(), ref)
	if err != nil {
		return err
	}
	return c.JSON(toMovementResponses(ms))
}

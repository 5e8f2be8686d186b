package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/application/pricing"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
)

// PriceHandler ventanas de precio por tienda y variante.
type PriceHandler struct {
	resolver *pricing.Resolver
}

// NewPriceHandler construye el handler.
func NewPriceHandler(resolver *pricing.Resolver) *PriceHandler {
	return &PriceHandler{resolver: resolver}
}

// Open godoc
// @Summary      Abrir ventana de precio (cierra la vigente en start_at)
// @Tags         prices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenPriceRequest  true  "variant_id, price, start_at"
// @Success      201   {object}  dto.PriceWindowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/prices [post]
func (h *PriceHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenPriceRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	storeID, err := resolveStore(c, in.StoreID)
	if err != nil {
		return err
	}
	input := pricing.OpenWindowInput{
		StoreID:   storeID,
		VariantID: in.VariantID,
		Price:     in.Price,
		ActorID:   GetUserID(c),
	}
	if in.StartAt != nil {
		input.StartAt = *in.StartAt
	}
	w, err := h.resolver.OpenWindow(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toPriceWindowResponse(w))
}

// Close godoc
// @Summary      Cerrar la ventana de precio abierta
// @Tags         prices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClosePriceRequest  true  "variant_id, at"
// @Success      200   {object}  dto.PriceWindowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/prices/close [post]
func (h *PriceHandler) Close(c *fiber.Ctx) error {
	var in dto.ClosePriceRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	storeID, err := resolveStore(c, in.StoreID)
	if err != nil {
		return err
	}
	at := time.Now()
	if in.At != nil {
		at = *in.At
	}
	w, err := h.resolver.CloseWindow(c.UserContext(), storeID, in.VariantID, at)
	if err != nil {
		return err
	}
	return c.JSON(toPriceWindowResponse(w))
}

// List godoc
// @Summary      Historial de ventanas de precio
// @Tags         prices
// @Security     Bearer
// @Produce      json
// @Param        variantId  path   string  true   "Variante"
// @Param        store_id   query  string  false  "Tienda (admin/manager)"
// @Success      200        {array}   dto.PriceWindowResponse
// @Router       /api/prices/{variantId} [get]
func (h *PriceHandler) List(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	windows, err := h.resolver.ListWindows(c.UserContext(), storeID, c.Params("variantId"))
	if err != nil {
		return err
	}
	out := make([]dto.PriceWindowResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, toPriceWindowResponse(w))
	}
	return c.JSON(out)
}

// Effective godoc
// @Summary      Precio vigente en un instante (ventana o precio base)
// @Tags         prices
// @Security     Bearer
// @Produce      json
// @Param        variantId  path   string  true   "Variante"
// @Param        at         query  string  false  "Instante RFC3339; por defecto ahora"
// @Param        store_id   query  string  false  "Tienda (admin/manager)"
// @Success      200        {object}  dto.EffectivePriceResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/prices/{variantId}/effective [get]
func (h *PriceHandler) Effective(c *fiber.Ctx) error {
	storeID, err := resolveStore(c, c.Query("store_id"))
	if err != nil {
		return err
	}
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Invalid("at debe estar en formato RFC3339")
		}
	}
	variantID := c.Params("variantId")
	ctx := c.UserContext()
	price, found, err := h.resolver.EffectivePrice(ctx, storeID, variantID, at)
	if err != nil {
		return err
	}
	if !found {
		price, err = h.resolver.Resolve(ctx, storeID, variantID, at)
		if err != nil {
			return err
		}
	}
	return c.JSON(dto.EffectivePriceResponse{
		StoreID:    storeID,
		VariantID:  variantID,
		At:         at,
		Price:      price,
		FromWindow: found,
	})
}

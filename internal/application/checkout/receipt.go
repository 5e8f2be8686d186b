package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

// ReceiptLine línea del ticket con el nombre de la variante resuelto.
type ReceiptLine struct {
	SKU       string
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// ReceiptRenderer genera el documento del ticket. Implementado por pdf.MarotoReceiptGenerator.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, invoice *entity.Invoice, store *entity.Store, lines []ReceiptLine) ([]byte, error)
}

// ReceiptUseCase arma el ticket de una venta cobrada.
type ReceiptUseCase struct {
	invoices repository.InvoiceRepository
	stores   repository.StoreRepository
	variants repository.VariantRepository
	renderer ReceiptRenderer
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	invoices repository.InvoiceRepository,
	stores repository.StoreRepository,
	variants repository.VariantRepository,
	renderer ReceiptRenderer,
) *ReceiptUseCase {
	return &ReceiptUseCase{invoices: invoices, stores: stores, variants: variants, renderer: renderer}
}

// Download devuelve el PDF y el nombre de archivo.
// Un carrito en espera o descartado no tiene ticket (ErrValidation).
func (uc *ReceiptUseCase) Download(ctx context.Context, invoiceID string, scope entity.Scope) ([]byte, string, error) {
	inv, err := uc.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if !scope.Allows(inv.StoreID) {
		return nil, "", domain.ErrForbidden
	}
	if inv.Status != entity.InvoiceStatusCompleted {
		return nil, "", domain.Invalid("la factura no está cobrada (estado " + inv.Status + ")")
	}

	store, err := uc.stores.GetByID(ctx, inv.StoreID)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: obtener tienda: %w", err)
	}
	if store == nil {
		store = &entity.Store{ID: inv.StoreID, Name: inv.StoreID}
	}

	items, err := uc.invoices.GetItems(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: obtener líneas: %w", err)
	}
	lines := make([]ReceiptLine, 0, len(items))
	for _, it := range items {
		l := ReceiptLine{
			Name:      "Variante " + it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		}
		if v, vErr := uc.variants.GetByID(ctx, it.VariantID); vErr == nil && v != nil {
			l.SKU = v.SKU
			l.Name = v.Name
		}
		lines = append(lines, l)
	}

	doc, err := uc.renderer.RenderReceipt(ctx, inv, store, lines)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: generación fallida: %w", err)
	}
	return doc, fmt.Sprintf("ticket_%s.pdf", inv.ID), nil
}

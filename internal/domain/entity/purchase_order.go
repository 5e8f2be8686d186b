package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de orden de compra.
const (
	PurchaseStatusDraft     = "draft"
	PurchaseStatusSubmitted = "submitted"
	PurchaseStatusApproved  = "approved"
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

// IsReceivableStatus indica si una orden en ese estado admite recepciones.
func IsReceivableStatus(s string) bool {
	return s == PurchaseStatusDraft || s == PurchaseStatusSubmitted || s == PurchaseStatusApproved
}

// PurchaseOrder cabecera de orden de compra a proveedor.
type PurchaseOrder struct {
	ID         string
	StoreID    string
	SupplierID string
	Status     string
	Total      decimal.Decimal
	Notes      string
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseItem línea de orden de compra.
// UnitCost es el último costo recibido; OrderedUnitCost conserva el costo pactado al crear la orden.
type PurchaseItem struct {
	ID               string
	OrderID          string
	VariantID        string
	Quantity         decimal.Decimal
	ReceivedQuantity decimal.Decimal
	UnitCost         decimal.Decimal
	OrderedUnitCost  decimal.Decimal
}

// Remaining devuelve la cantidad pendiente de recibir.
func (i *PurchaseItem) Remaining() decimal.Decimal {
	return i.Quantity.Sub(i.ReceivedQuantity)
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de traslado entre tiendas.
const (
	TransferStatusPending   = "pending"
	TransferStatusInTransit = "in_transit"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// Transfer traslado de stock de una tienda a otra.
type Transfer struct {
	ID           string
	FromStoreID  string
	ToStoreID    string
	Status       string
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
	DispatchedAt *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	UpdatedAt    time.Time
}

// TransferItem línea de traslado. ReceivedQuantity es acumulado y nunca supera Quantity.
type TransferItem struct {
	ID               string
	TransferID       string
	VariantID        string
	Quantity         decimal.Decimal
	ReceivedQuantity decimal.Decimal
}

// Remaining devuelve la cantidad que falta recibir en destino.
func (i *TransferItem) Remaining() decimal.Decimal {
	return i.Quantity.Sub(i.ReceivedQuantity)
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de devolución.
const (
	ReturnStatusCompleted = "completed"
	ReturnStatusCancelled = "cancelled"
)

// Return devolución (parcial o total) de una venta.
type Return struct {
	ID           string
	InvoiceID    string
	StoreID      string
	RefundMethod string
	Restock      bool
	TotalRefund  decimal.Decimal
	Status       string
	Reason       string
	CreatedBy    string
	ApprovedBy   string // vacío si no superó el umbral
	CreatedAt    time.Time
}

// ReturnItem línea devuelta, referida a una línea de factura.
type ReturnItem struct {
	ID            string
	ReturnID      string
	InvoiceItemID string
	VariantID     string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	RefundAmount  decimal.Decimal
}

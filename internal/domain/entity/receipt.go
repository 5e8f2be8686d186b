package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt recepción de mercancía contra una orden de compra.
// ReceiptNumber es la llave de idempotencia (única en todo el sistema).
type Receipt struct {
	ID            string
	OrderID       string
	StoreID       string
	ReceiptNumber string
	Total         decimal.Decimal
	ReceivedBy    string
	ReceivedAt    time.Time
}

// ReceiptItem línea recibida.
type ReceiptItem struct {
	ID             string
	ReceiptID      string
	PurchaseItemID string
	VariantID      string
	LotID          string
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	LineTotal      decimal.Decimal
}

// StockLot lote recibido con su costo y vencimiento.
type StockLot struct {
	ID        string
	StoreID   string
	VariantID string
	ReceiptID string
	LotNumber string
	ExpiresAt *time.Time
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	CreatedAt time.Time
}

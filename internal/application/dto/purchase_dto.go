package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest línea de orden de compra.
type PurchaseLineRequest struct {
	VariantID string          `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	StoreID    string                `json:"store_id,omitempty"`
	SupplierID string                `json:"supplier_id"`
	Notes      string                `json:"notes,omitempty"`
	Lines      []PurchaseLineRequest `json:"lines"`
}

// ReceiveLineRequest línea recibida.
type ReceiveLineRequest struct {
	VariantID string           `json:"variant_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	LotNumber string           `json:"lot_number,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// ReceiveRequest body para POST /api/purchase-orders/:id/receive. Sin líneas recibe todo lo pendiente.
type ReceiveRequest struct {
	ReferenceID string               `json:"reference_id,omitempty"`
	Lines       []ReceiveLineRequest `json:"lines,omitempty"`
}

// PurchaseItemResponse línea de orden.
type PurchaseItemResponse struct {
	ID               string          `json:"id"`
	VariantID        string          `json:"variant_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	OrderedUnitCost  decimal.Decimal `json:"ordered_unit_cost"`
}

// ReceiptResponse recepción de mercancía.
type ReceiptResponse struct {
	ID            string                `json:"id"`
	OrderID       string                `json:"order_id"`
	ReceiptNumber string                `json:"receipt_number"`
	Total         decimal.Decimal       `json:"total"`
	ReceivedBy    string                `json:"received_by"`
	ReceivedAt    time.Time             `json:"received_at"`
	Items         []ReceiptItemResponse `json:"items,omitempty"`
}

// ReceiptItemResponse línea recibida.
type ReceiptItemResponse struct {
	ID             string          `json:"id"`
	PurchaseItemID string          `json:"purchase_item_id"`
	VariantID      string          `json:"variant_id"`
	LotID          string          `json:"lot_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse orden con líneas y recepciones.
type PurchaseOrderResponse struct {
	ID         string                 `json:"id"`
	StoreID    string                 `json:"store_id"`
	SupplierID string                 `json:"supplier_id"`
	Status     string                 `json:"status"`
	Total      decimal.Decimal        `json:"total"`
	Notes      string                 `json:"notes,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	Items      []PurchaseItemResponse `json:"items,omitempty"`
	Receipts   []ReceiptResponse      `json:"receipts,omitempty"`
}

// ReceiveResponse salida de una recepción; replayed indica que la referencia ya se había procesado.
type ReceiveResponse struct {
	Order    PurchaseOrderResponse `json:"order"`
	Receipt  ReceiptResponse       `json:"receipt"`
	Replayed bool                  `json:"replayed"`
}

// LotResponse lote recibido.
type LotResponse struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id"`
	VariantID string          `json:"variant_id"`
	ReceiptID string          `json:"receipt_id"`
	LotNumber string          `json:"lot_number,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	CreatedAt time.Time       `json:"created_at"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferLineRequest línea de traslado.
type TransferLineRequest struct {
	VariantID string          `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest body para POST /api/transfers. FromStoreID vacío usa la tienda del token.
type CreateTransferRequest struct {
	FromStoreID string                `json:"from_store_id,omitempty"`
	ToStoreID   string                `json:"to_store_id"`
	Notes       string                `json:"notes,omitempty"`
	Lines       []TransferLineRequest `json:"lines"`
}

// ReceiveTransferRequest body para POST /api/transfers/:id/receive. Sin líneas recibe todo lo pendiente.
type ReceiveTransferRequest struct {
	Lines []TransferLineRequest `json:"lines,omitempty"`
}

// TransferItemResponse línea de traslado.
type TransferItemResponse struct {
	ID               string          `json:"id"`
	VariantID        string          `json:"variant_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// TransferResponse traslado con líneas.
type TransferResponse struct {
	ID           string                 `json:"id"`
	FromStoreID  string                 `json:"from_store_id"`
	ToStoreID    string                 `json:"to_store_id"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	CreatedBy    string                 `json:"created_by"`
	CreatedAt    time.Time              `json:"created_at"`
	DispatchedAt *time.Time             `json:"dispatched_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	CancelledAt  *time.Time             `json:"cancelled_at,omitempty"`
	Items        []TransferItemResponse `json:"items,omitempty"`
}

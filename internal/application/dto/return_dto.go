package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnLineRequest línea a devolver.
type ReturnLineRequest struct {
	InvoiceItemID string          `json:"invoice_item_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// CreateReturnRequest body para POST /api/returns.
type CreateReturnRequest struct {
	InvoiceID    string              `json:"invoice_id"`
	RefundMethod string              `json:"refund_method"`
	Restock      bool                `json:"restock"`
	Reason       string              `json:"reason,omitempty"`
	Lines        []ReturnLineRequest `json:"lines"`
}

// RefundRequest body para POST /api/invoices/:id/refund.
type RefundRequest struct {
	RefundMethod string `json:"refund_method"`
	Restock      bool   `json:"restock"`
	Reason       string `json:"reason,omitempty"`
}

// ReturnItemResponse línea devuelta.
type ReturnItemResponse struct {
	ID            string          `json:"id"`
	InvoiceItemID string          `json:"invoice_item_id"`
	VariantID     string          `json:"variant_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
}

// ReturnResponse devolución registrada.
type ReturnResponse struct {
	ID           string               `json:"id"`
	InvoiceID    string               `json:"invoice_id"`
	StoreID      string               `json:"store_id"`
	RefundMethod string               `json:"refund_method"`
	Restock      bool                 `json:"restock"`
	TotalRefund  decimal.Decimal      `json:"total_refund"`
	Status       string               `json:"status"`
	Reason       string               `json:"reason,omitempty"`
	CreatedBy    string               `json:"created_by"`
	ApprovedBy   string               `json:"approved_by,omitempty"`
	CashRecorded bool                 `json:"cash_recorded"`
	CreatedAt    time.Time            `json:"created_at"`
	Items        []ReturnItemResponse `json:"items"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineRequest línea de carrito.
type CartLineRequest struct {
	VariantID string          `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CartRequest body para POST /api/checkout y POST /api/held-carts.
// StoreID solo lo pueden indicar admin y manager; el resto usa la tienda del token.
type CartRequest struct {
	StoreID       string            `json:"store_id,omitempty"`
	CustomerID    string            `json:"customer_id,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Discount      decimal.Decimal   `json:"discount"`
	Tax           decimal.Decimal   `json:"tax"`
	Lines         []CartLineRequest `json:"lines"`
}

// ResumeRequest body para POST /api/held-carts/:id/resume.
type ResumeRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// InvoiceItemResponse línea de factura.
type InvoiceItemResponse struct {
	ID        string          `json:"id"`
	VariantID string          `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceResponse factura con detalle.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	StoreID       string                `json:"store_id"`
	CashierID     string                `json:"cashier_id"`
	ShiftID       string                `json:"shift_id,omitempty"`
	CustomerID    string                `json:"customer_id,omitempty"`
	PaymentMethod *string               `json:"payment_method"`
	Status        string                `json:"status"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	CreatedAt     time.Time             `json:"created_at"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
}

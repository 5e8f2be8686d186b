package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura.
const (
	InvoiceStatusHeld      = "held"      // carrito en espera (PaymentMethod nil)
	InvoiceStatusCompleted = "completed" // venta cobrada
	InvoiceStatusCancelled = "cancelled" // carrito en espera descartado
)

// Métodos de pago.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodEWallet      = "e_wallet"
)

// IsValidPaymentMethod indica si m es un método de pago aceptado.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodEWallet:
		return true
	}
	return false
}

// Invoice representa una venta o un carrito en espera.
// PaymentMethod nil indica carrito en espera; no nil, venta completada.
type Invoice struct {
	ID            string
	StoreID       string
	CashierID     string
	ShiftID       string
	CustomerID    string
	PaymentMethod *string
	Status        string
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	CreatedAt     time.Time
	CompletedAt   *time.Time
	UpdatedAt     time.Time
}

// IsHeld indica si la factura es un carrito en espera que todavía puede reanudarse.
func (i *Invoice) IsHeld() bool {
	return i.PaymentMethod == nil && i.Status == InvoiceStatusHeld
}

// InvoiceItem es una línea de factura. UnitPrice y UnitCost quedan congelados al momento de la venta.
type InvoiceItem struct {
	ID        string
	InvoiceID string
	VariantID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	LineTotal decimal.Decimal
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de turno.
const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

// Tipos de movimiento de caja.
const (
	CashMovementRefundOut = "refund_out"
)

// Shift representa un turno de caja. Solo uno abierto por tienda.
type Shift struct {
	ID           string
	StoreID      string
	CashierID    string
	OpeningCash  decimal.Decimal
	ExpectedCash *decimal.Decimal // se calcula al cerrar: apertura + movimientos
	DeclaredCash *decimal.Decimal
	Difference   *decimal.Decimal
	Status       string
	OpenedAt     time.Time
	ClosedAt     *time.Time
}

// CashMovement es un movimiento inmutable de efectivo dentro de un turno.
// Amount es con signo: negativo para salidas de caja.
type CashMovement struct {
	ID          string
	ShiftID     string
	Type        string
	Amount      decimal.Decimal
	ReferenceID string
	Reason      string
	CreatedBy   string
	CreatedAt   time.Time
}

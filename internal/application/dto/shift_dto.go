package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenShiftRequest body para POST /api/shifts/open.
type OpenShiftRequest struct {
	StoreID     string          `json:"store_id,omitempty"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

// CloseShiftRequest body para POST /api/shifts/:id/close.
type CloseShiftRequest struct {
	DeclaredCash decimal.Decimal `json:"declared_cash"`
}

// CashMovementResponse movimiento de caja del turno.
type CashMovementResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID string          `json:"reference_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ShiftResponse turno de caja.
type ShiftResponse struct {
	ID            string                 `json:"id"`
	StoreID       string                 `json:"store_id"`
	CashierID     string                 `json:"cashier_id"`
	OpeningCash   decimal.Decimal        `json:"opening_cash"`
	ExpectedCash  *decimal.Decimal       `json:"expected_cash,omitempty"`
	DeclaredCash  *decimal.Decimal       `json:"declared_cash,omitempty"`
	Difference    *decimal.Decimal       `json:"difference,omitempty"`
	Status        string                 `json:"status"`
	OpenedAt      time.Time              `json:"opened_at"`
	ClosedAt      *time.Time             `json:"closed_at,omitempty"`
	CashMovements []CashMovementResponse `json:"cash_movements,omitempty"`
}

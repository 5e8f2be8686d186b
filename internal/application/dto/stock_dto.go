package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnsurePositionRequest body opcional para POST /api/stock/:variantId/ensure.
type EnsurePositionRequest struct {
	StoreID string `json:"store_id,omitempty"`
}

// PositionResponse posición de stock de una variante en una tienda.
type PositionResponse struct {
	StoreID   string          `json:"store_id"`
	VariantID string          `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
	LastCost  decimal.Decimal `json:"last_cost"`
	AvgCost   decimal.Decimal `json:"avg_cost"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MovementResponse movimiento del libro de inventario.
type MovementResponse struct {
	ID           string          `json:"id"`
	StoreID      string          `json:"store_id"`
	VariantID    string          `json:"variant_id"`
	Change       decimal.Decimal `json:"change"`
	MovementType string          `json:"movement_type"`
	ReferenceID  string          `json:"reference_id"`
	Reason       string          `json:"reason,omitempty"`
	ActorID      string          `json:"actor_id,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReconcileResponse resultado de cuadrar existencia contra movimientos.
type ReconcileResponse struct {
	StoreID        string          `json:"store_id"`
	VariantID      string          `json:"variant_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reserved       decimal.Decimal `json:"reserved"`
	MovementsTotal decimal.Decimal `json:"movements_total"`
	Balanced       bool            `json:"balanced"`
}

// AvailabilityResponse resultado de consultar si hay cantidad disponible.
type AvailabilityResponse struct {
	StoreID   string          `json:"store_id"`
	VariantID string          `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Available bool            `json:"available"`
}

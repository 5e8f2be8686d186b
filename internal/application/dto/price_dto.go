package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenPriceRequest body para POST /api/prices.
type OpenPriceRequest struct {
	StoreID   string          `json:"store_id,omitempty"`
	VariantID string          `json:"variant_id"`
	Price     decimal.Decimal `json:"price"`
	StartAt   *time.Time      `json:"start_at,omitempty"`
}

// ClosePriceRequest body para POST /api/prices/close.
type ClosePriceRequest struct {
	StoreID   string     `json:"store_id,omitempty"`
	VariantID string     `json:"variant_id"`
	At        *time.Time `json:"at,omitempty"`
}

// PriceWindowResponse ventana de precio [start_at, end_at).
type PriceWindowResponse struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id"`
	VariantID string          `json:"variant_id"`
	Price     decimal.Decimal `json:"price"`
	StartAt   time.Time       `json:"start_at"`
	EndAt     *time.Time      `json:"end_at"`
}

// EffectivePriceResponse precio vigente; from_window es false si se usó el precio base.
type EffectivePriceResponse struct {
	StoreID    string          `json:"store_id"`
	VariantID  string          `json:"variant_id"`
	At         time.Time       `json:"at"`
	Price      decimal.Decimal `json:"price"`
	FromWindow bool            `json:"from_window"`
}

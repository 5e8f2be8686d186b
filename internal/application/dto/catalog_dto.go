package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStoreRequest body para POST /api/stores.
type CreateStoreRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// StoreResponse tienda en respuestas.
type StoreResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreListResponse listado paginado de tiendas.
type StoreListResponse struct {
	Items []StoreResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// CreateVariantRequest body para POST /api/variants.
type CreateVariantRequest struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
}

// VariantResponse variante en respuestas.
type VariantResponse struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// VariantListResponse listado paginado de variantes.
type VariantListResponse struct {
	Items []VariantResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VariantPrice es una ventana de precio [StartAt, EndAt) por tienda y variante.
// EndAt nil significa ventana abierta; solo puede haber una abierta por (tienda, variante).
type VariantPrice struct {
	ID        string
	StoreID   string
	VariantID string
	Price     decimal.Decimal
	StartAt   time.Time
	EndAt     *time.Time
	CreatedBy string
	CreatedAt time.Time
}

// Covers indica si la ventana está vigente en el instante at.
func (p *VariantPrice) Covers(at time.Time) bool {
	if at.Before(p.StartAt) {
		return false
	}
	return p.EndAt == nil || at.Before(*p.EndAt)
}

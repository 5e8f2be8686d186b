package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPosition representa el stock de una variante en una tienda.
// Invariante: 0 <= Reserved <= Quantity. Se crea en cero la primera vez que se toca y nunca se borra.
type StockPosition struct {
	StoreID   string
	VariantID string
	Quantity  decimal.Decimal // existencia física (on-hand)
	Reserved  decimal.Decimal // apartado para carritos en espera y traslados pendientes
	LastCost  decimal.Decimal // último costo unitario recibido
	AvgCost   decimal.Decimal // costo promedio ponderado
	UpdatedAt time.Time
}

// Available devuelve Quantity - Reserved.
func (p *StockPosition) Available() decimal.Decimal {
	return p.Quantity.Sub(p.Reserved)
}

// PositionKey identifica una posición por tienda y variante.
type PositionKey struct {
	StoreID   string
	VariantID string
}

// Key devuelve la clave de la posición.
func (p *StockPosition) Key() PositionKey {
	return PositionKey{StoreID: p.StoreID, VariantID: p.VariantID}
}

// Less ordena claves por tienda y luego por variante (orden de bloqueo).
func (k PositionKey) Less(o PositionKey) bool {
	if k.StoreID != o.StoreID {
		return k.StoreID < o.StoreID
	}
	return k.VariantID < o.VariantID
}

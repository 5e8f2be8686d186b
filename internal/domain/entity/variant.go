package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant representa una variante vendible de un producto (talla, color, presentación).
type Variant struct {
	ID        string
	SKU       string // código único
	Name      string
	BasePrice decimal.Decimal // precio cuando no hay ventana de precio vigente
	Status    string          // active, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

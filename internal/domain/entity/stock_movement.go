package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeReceive     = "receive"      // recepción de compra
	MovementTypeSale        = "sale"         // venta en caja
	MovementTypeRefund      = "refund"       // reembolso total de una factura con reingreso
	MovementTypeReturn      = "return"       // devolución parcial con reingreso
	MovementTypeTransferOut = "transfer_out" // despacho de traslado en origen
	MovementTypeTransferIn  = "transfer_in"  // recepción de traslado en destino
)

// IsValidMovementType indica si t es uno de los tipos conocidos.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeReceive, MovementTypeSale, MovementTypeRefund, MovementTypeReturn,
		MovementTypeTransferOut, MovementTypeTransferIn:
		return true
	}
	return false
}

// StockMovement es un asiento inmutable del ledger: nunca se actualiza ni se borra.
// La suma de Change por (tienda, variante) es igual a StockPosition.Quantity.
type StockMovement struct {
	ID           string
	StoreID      string
	VariantID    string
	Change       decimal.Decimal // positivo entrada, negativo salida
	MovementType string
	ReferenceID  string // factura, recepción, traslado o devolución que lo originó
	Reason       string
	ActorID      string
	UnitCost     decimal.Decimal
	CreatedAt    time.Time
}

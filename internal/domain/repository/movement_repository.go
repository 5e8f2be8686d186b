package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// MovementRepository define el puerto del log de movimientos (solo inserción y lectura).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByPosition(ctx context.Context, storeID, variantID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error)
	// SumChange devuelve la suma de Change de todos los movimientos de la posición.
	SumChange(ctx context.Context, storeID, variantID string) (decimal.Decimal, error)
}

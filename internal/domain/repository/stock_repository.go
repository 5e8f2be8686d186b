package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// StockRepository define el puerto para leer y actualizar posiciones de stock (tienda + variante).
// Las escrituras se hacen siempre dentro de una transacción y tras GetForUpdate.
type StockRepository interface {
	// Get devuelve nil, nil si la posición no existe.
	Get(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve nil, nil si no existe.
	GetForUpdate(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error)
	// Ensure crea la posición en cero si no existe (idempotente).
	Ensure(ctx context.Context, storeID, variantID string) error
	Update(ctx context.Context, position *entity.StockPosition) error
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.StockPosition, error)
}

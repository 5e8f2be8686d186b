package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// PriceRepository define el puerto de persistencia para ventanas de precio.
type PriceRepository interface {
	Create(ctx context.Context, price *entity.VariantPrice) error
	// GetOpenForUpdate bloquea la ventana abierta (EndAt nil); nil, nil si no hay.
	GetOpenForUpdate(ctx context.Context, storeID, variantID string) (*entity.VariantPrice, error)
	SetEnd(ctx context.Context, id string, endAt time.Time) error
	// ListByVariant devuelve las ventanas ordenadas por StartAt ascendente.
	ListByVariant(ctx context.Context, storeID, variantID string) ([]*entity.VariantPrice, error)
}

package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// PriceResolver resuelve el precio unitario vigente (ventana abierta o precio base).
// Implementado por pricing.Resolver.
type PriceResolver interface {
	ResolveFor(ctx context.Context, storeID string, v *entity.Variant, at time.Time) (decimal.Decimal, error)
}

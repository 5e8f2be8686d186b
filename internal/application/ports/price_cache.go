package ports

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// PriceCache guarda las ventanas de precio de una (tienda, variante).
type PriceCache interface {
	Get(ctx context.Context, storeID, variantID string) ([]*entity.VariantPrice, bool, error)
	Set(ctx context.Context, storeID, variantID string, windows []*entity.VariantPrice, ttl time.Duration) error
	Invalidate(ctx context.Context, storeID, variantID string) error
}

// NoopPriceCache no guarda nada; toda lectura va a la BD.
type NoopPriceCache struct{}

func (NoopPriceCache) Get(_ context.Context, _, _ string) ([]*entity.VariantPrice, bool, error) {
	return nil, false, nil
}

func (NoopPriceCache) Set(_ context.Context, _, _ string, _ []*entity.VariantPrice, _ time.Duration) error {
	return nil
}

func (NoopPriceCache) Invalidate(_ context.Context, _, _ string) error { return nil }

package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para Store.
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Store, error)
}

// VariantRepository define el puerto de persistencia para Variant.
type VariantRepository interface {
	Create(ctx context.Context, variant *entity.Variant) error
	GetByID(ctx context.Context, id string) (*entity.Variant, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Variant, error)
}

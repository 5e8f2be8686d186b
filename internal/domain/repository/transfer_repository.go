package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia para traslados.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	CreateItem(ctx context.Context, item *entity.TransferItem) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	GetItems(ctx context.Context, transferID string) ([]*entity.TransferItem, error)
	Update(ctx context.Context, transfer *entity.Transfer) error
	UpdateItem(ctx context.Context, item *entity.TransferItem) error
	// ListByStore devuelve traslados donde la tienda es origen o destino.
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Transfer, error)
}

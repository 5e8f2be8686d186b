package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.Return) error
	CreateItem(ctx context.Context, item *entity.ReturnItem) error
	// ReturnedQuantity suma lo devuelto de una línea de factura excluyendo devoluciones canceladas.
	ReturnedQuantity(ctx context.Context, invoiceItemID string) (decimal.Decimal, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Return, error)
	GetItems(ctx context.Context, returnID string) ([]*entity.ReturnItem, error)
}

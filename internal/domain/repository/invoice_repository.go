package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate bloquea la cabecera; serializa reanudaciones y devoluciones sobre la misma factura.
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	ListHeldByStore(ctx context.Context, storeID string) ([]*entity.Invoice, error)
}

package ports

import (
	"context"

	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
// Los motores solo mutan stock a través de ledger.Ledger construido con Stock y Movements.
type Repos struct {
	Stock     repository.StockRepository
	Movements repository.MovementRepository
	Stores    repository.StoreRepository
	Variants  repository.VariantRepository
	Prices    repository.PriceRepository
	Shifts    repository.ShiftRepository
	Invoices  repository.InvoiceRepository
	Purchases repository.PurchaseRepository
	Transfers repository.TransferRepository
	Returns   repository.ReturnRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error todo se revierte; si no, se confirma.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// ShiftRepository define el puerto de persistencia para turnos y movimientos de caja.
type ShiftRepository interface {
	Create(ctx context.Context, shift *entity.Shift) error
	GetByID(ctx context.Context, id string) (*entity.Shift, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Shift, error)
	// GetOpenByStore devuelve el turno abierto de la tienda o nil, nil.
	GetOpenByStore(ctx context.Context, storeID string) (*entity.Shift, error)
	Update(ctx context.Context, shift *entity.Shift) error
	CreateCashMovement(ctx context.Context, movement *entity.CashMovement) error
	ListCashMovements(ctx context.Context, shiftID string) ([]*entity.CashMovement, error)
	SumCashMovements(ctx context.Context, shiftID string) (decimal.Decimal, error)
}

package ports

import (
	"context"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// MovementPublisher publica movimientos ya confirmados para reporting y auditoría.
// Se invoca después del commit; un fallo no revierte el flujo.
type MovementPublisher interface {
	Publish(ctx context.Context, movements []*entity.StockMovement) error
}

// NoopPublisher descarta los eventos.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ []*entity.StockMovement) error { return nil }

package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
	"github.com/jhoicas/retail-ledger-api/pkg/tracing"
)

var tracer = tracing.Tracer("ledger")

// Reconciliation compara la existencia de una posición con la suma de sus movimientos.
type Reconciliation struct {
	StoreID        string
	VariantID      string
	Quantity       decimal.Decimal
	Reserved       decimal.Decimal
	MovementsTotal decimal.Decimal
	Balanced       bool
}

// Service casos de uso de consulta del ledger y alta explícita de posiciones.
type Service struct {
	tx        ports.TxRunner
	stock     repository.StockRepository
	movements repository.MovementRepository
	log       *logger.Logger
}

// NewService construye el servicio. stock y movements son de lectura (pool); Reconcile usa los de la tx.
func NewService(tx ports.TxRunner, stock repository.StockRepository, movements repository.MovementRepository, log *logger.Logger) *Service {
	return &Service{tx: tx, stock: stock, movements: movements, log: log}
}

// EnsurePosition crea la posición en cero si no existe.
func (s *Service) EnsurePosition(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	ctx, span := tracer.Start(ctx, "ledger.EnsurePosition")
	var out *entity.StockPosition
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		v, err := r.Variants.GetByID(ctx, variantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.NewLineError(domain.ErrValidation, -1, variantID, "variante inexistente")
		}
		p, err := New(r.Stock, r.Movements).EnsurePosition(ctx, storeID, variantID)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckAvailable consulta sin bloquear si hay qty disponible. Posición inexistente = 0 disponible.
func (s *Service) CheckAvailable(ctx context.Context, storeID, variantID string, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.Invalid("la cantidad debe ser mayor que cero")
	}
	p, err := s.stock.Get(ctx, storeID, variantID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &entity.StockPosition{StoreID: storeID, VariantID: variantID}
	}
	return inventory.CheckAvailable(p, qty)
}

// GetPosition devuelve la posición o ErrPositionNotFound.
func (s *Service) GetPosition(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	p, err := s.stock.Get(ctx, storeID, variantID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewLineError(domain.ErrPositionNotFound, -1, variantID, "tienda "+storeID)
	}
	return p, nil
}

// ListPositions lista las posiciones de una tienda.
func (s *Service) ListPositions(ctx context.Context, storeID string, limit, offset int) ([]*entity.StockPosition, error) {
	return s.stock.ListByStore(ctx, storeID, limit, offset)
}

// ListMovements lista los movimientos de una posición, más recientes primero.
func (s *Service) ListMovements(ctx context.Context, storeID, variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	return s.movements.ListByPosition(ctx, storeID, variantID, limit, offset)
}

// ListByReference lista los movimientos originados por un documento (factura, recepción, traslado...).
func (s *Service) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	if referenceID == "" {
		return nil, domain.Invalid("reference es obligatorio")
	}
	return s.movements.ListByReference(ctx, referenceID)
}

// Reconcile verifica quantity = Σ change para la posición. Lee la fila bloqueada y la suma
// en la misma transacción, así un movimiento concurrente no la descuadra.
func (s *Service) Reconcile(ctx context.Context, storeID, variantID string) (*Reconciliation, error) {
	var rec *Reconciliation
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		p, err := r.Stock.GetForUpdate(ctx, storeID, variantID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewLineError(domain.ErrPositionNotFound, -1, variantID, "tienda "+storeID)
		}
		sum, err := r.Movements.SumChange(ctx, storeID, variantID)
		if err != nil {
			return err
		}
		rec = &Reconciliation{
			StoreID:        storeID,
			VariantID:      variantID,
			Quantity:       p.Quantity,
			Reserved:       p.Reserved,
			MovementsTotal: sum,
			Balanced:       sum.Equal(p.Quantity),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !rec.Balanced {
		s.log.Position(storeID, variantID).Warn().
			Str("quantity", rec.Quantity.String()).Str("movements_total", rec.MovementsTotal.String()).
			Msg("posición descuadrada frente a sus movimientos")
	}
	return rec, nil
}

// Publish envía los movimientos confirmados; los fallos solo se registran.
func Publish(ctx context.Context, pub ports.MovementPublisher, log *logger.Logger, movements []*entity.StockMovement) {
	if pub == nil || len(movements) == 0 {
		return
	}
	if err := pub.Publish(ctx, movements); err != nil {
		log.Warn().Err(err).Int("movements", len(movements)).Msg("no se pudieron publicar movimientos")
	}
}

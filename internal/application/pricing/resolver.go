// Package pricing resuelve el precio vigente de una variante por tienda a partir de ventanas
// de tiempo [StartAt, EndAt) y administra la apertura y cierre de esas ventanas.
package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
	"github.com/jhoicas/retail-ledger-api/pkg/tracing"
)

var tracer = tracing.Tracer("pricing")

// Resolver consulta y administra ventanas de precio.
type Resolver struct {
	tx       ports.TxRunner
	prices   repository.PriceRepository
	variants repository.VariantRepository
	cache    ports.PriceCache
	ttl      time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewResolver construye el resolver. prices y variants son de lectura (pool).
func NewResolver(
	tx ports.TxRunner,
	prices repository.PriceRepository,
	variants repository.VariantRepository,
	cache ports.PriceCache,
	ttl time.Duration,
	log *logger.Logger,
) *Resolver {
	if cache == nil {
		cache = ports.NoopPriceCache{}
	}
	return &Resolver{tx: tx, prices: prices, variants: variants, cache: cache, ttl: ttl, log: log, now: time.Now}
}

// EffectivePrice devuelve el precio de la ventana vigente en at, o found=false si no hay ninguna.
func (r *Resolver) EffectivePrice(ctx context.Context, storeID, variantID string, at time.Time) (decimal.Decimal, bool, error) {
	windows, err := r.windows(ctx, storeID, variantID)
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, w := range windows {
		if w.Covers(at) {
			return w.Price, true, nil
		}
	}
	return decimal.Zero, false, nil
}

// Resolve devuelve el precio vigente o, si no hay ventana, el precio base de la variante.
func (r *Resolver) Resolve(ctx context.Context, storeID, variantID string, at time.Time) (decimal.Decimal, error) {
	v, err := r.variants.GetByID(ctx, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	if v == nil {
		return decimal.Zero, domain.NewLineError(domain.ErrValidation, -1, variantID, "variante inexistente")
	}
	return r.ResolveFor(ctx, storeID, v, at)
}

// ResolveFor igual que Resolve con la variante ya cargada.
func (r *Resolver) ResolveFor(ctx context.Context, storeID string, v *entity.Variant, at time.Time) (decimal.Decimal, error) {
	price, found, err := r.EffectivePrice(ctx, storeID, v.ID, at)
	if err != nil {
		return decimal.Zero, err
	}
	if found {
		return price, nil
	}
	return v.BasePrice, nil
}

// ListWindows devuelve todas las ventanas de la (tienda, variante) en orden cronológico.
func (r *Resolver) ListWindows(ctx context.Context, storeID, variantID string) ([]*entity.VariantPrice, error) {
	return r.prices.ListByVariant(ctx, storeID, variantID)
}

// OpenWindowInput entrada para abrir una ventana de precio.
type OpenWindowInput struct {
	StoreID   string
	VariantID string
	Price     decimal.Decimal
	StartAt   time.Time // cero = ahora
	ActorID   string
}

// OpenWindow abre una ventana nueva desde StartAt y cierra la anterior abierta en ese mismo instante.
// StartAt no puede solaparse con ventanas ya cerradas ni ser anterior al inicio de la abierta.
func (r *Resolver) OpenWindow(ctx context.Context, in OpenWindowInput) (*entity.VariantPrice, error) {
	if in.StoreID == "" || in.VariantID == "" {
		return nil, domain.Invalid("tienda y variante son obligatorias")
	}
	if in.Price.LessThan(decimal.Zero) {
		return nil, domain.Invalid("el precio no puede ser negativo")
	}
	if in.StartAt.IsZero() {
		in.StartAt = r.now()
	}
	ctx, span := tracer.Start(ctx, "pricing.OpenWindow")

	created := &entity.VariantPrice{
		ID:        uuid.New().String(),
		StoreID:   in.StoreID,
		VariantID: in.VariantID,
		Price:     in.Price,
		StartAt:   in.StartAt,
		CreatedBy: in.ActorID,
		CreatedAt: r.now(),
	}
	err := r.tx.Run(ctx, func(repos ports.Repos) error {
		v, err := repos.Variants.GetByID(ctx, in.VariantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.NewLineError(domain.ErrValidation, -1, in.VariantID, "variante inexistente")
		}
		open, err := repos.Prices.GetOpenForUpdate(ctx, in.StoreID, in.VariantID)
		if err != nil {
			return err
		}
		windows, err := repos.Prices.ListByVariant(ctx, in.StoreID, in.VariantID)
		if err != nil {
			return err
		}
		for _, w := range windows {
			if open != nil && w.ID == open.ID {
				continue
			}
			if w.EndAt != nil && w.EndAt.After(in.StartAt) {
				return domain.Invalid("la ventana se solapa con una ventana ya cerrada")
			}
		}
		if open != nil {
			if !in.StartAt.After(open.StartAt) {
				return domain.Invalid("el inicio debe ser posterior al de la ventana abierta")
			}
			if err := repos.Prices.SetEnd(ctx, open.ID, in.StartAt); err != nil {
				return err
			}
		}
		return repos.Prices.Create(ctx, created)
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, in.StoreID, in.VariantID)
	r.log.Position(in.StoreID, in.VariantID).Info().
		Str("price", in.Price.String()).Time("start_at", in.StartAt).Msg("ventana de precio abierta")
	return created, nil
}

// CloseWindow termina la ventana abierta en at. Desde at rige el precio base.
func (r *Resolver) CloseWindow(ctx context.Context, storeID, variantID string, at time.Time) (*entity.VariantPrice, error) {
	if at.IsZero() {
		at = r.now()
	}
	var closed *entity.VariantPrice
	err := r.tx.Run(ctx, func(repos ports.Repos) error {
		open, err := repos.Prices.GetOpenForUpdate(ctx, storeID, variantID)
		if err != nil {
			return err
		}
		if open == nil {
			return domain.Invalid("no hay ventana de precio abierta")
		}
		if !at.After(open.StartAt) {
			return domain.Invalid("el cierre debe ser posterior al inicio de la ventana")
		}
		if err := repos.Prices.SetEnd(ctx, open.ID, at); err != nil {
			return err
		}
		end := at
		open.EndAt = &end
		closed = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, storeID, variantID)
	return closed, nil
}

func (r *Resolver) windows(ctx context.Context, storeID, variantID string) ([]*entity.VariantPrice, error) {
	cached, ok, err := r.cache.Get(ctx, storeID, variantID)
	if err != nil {
		r.log.Position(storeID, variantID).Warn().Err(err).Msg("cache de precios no disponible")
	}
	if ok {
		return cached, nil
	}
	windows, err := r.prices.ListByVariant(ctx, storeID, variantID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, storeID, variantID, windows, r.ttl); err != nil {
		r.log.Warn().Err(err).Msg("no se pudo guardar en cache de precios")
	}
	return windows, nil
}

func (r *Resolver) invalidate(ctx context.Context, storeID, variantID string) {
	if err := r.cache.Invalidate(ctx, storeID, variantID); err != nil {
		r.log.Position(storeID, variantID).Warn().Err(err).Msg("no se pudo invalidar cache de precios")
	}
}

// Package ledger expone las primitivas del libro de inventario: es la única vía por la que
// cambian Quantity y Reserved de una StockPosition. Un Ledger vive dentro de una transacción.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

// Entry describe un movimiento a registrar con Decrement o Increment.
type Entry struct {
	StoreID      string
	VariantID    string
	Quantity     decimal.Decimal // siempre positivo; el signo lo pone la primitiva
	MovementType string
	ReferenceID  string
	Reason       string
	ActorID      string
	UnitCost     *decimal.Decimal // Increment: sobrescribe LastCost si no es nil
}

// Ledger aplica primitivas sobre posiciones bloqueadas en la transacción actual.
// No es seguro para uso concurrente: se crea uno por transacción.
type Ledger struct {
	stock     repository.StockRepository
	movements repository.MovementRepository
	now       func() time.Time

	locked  map[entity.PositionKey]*entity.StockPosition
	written []*entity.StockMovement
}

// New construye un Ledger sobre repositorios atados a una tx.
func New(stock repository.StockRepository, movements repository.MovementRepository) *Ledger {
	return &Ledger{
		stock:     stock,
		movements: movements,
		now:       time.Now,
		locked:    make(map[entity.PositionKey]*entity.StockPosition),
	}
}

// Movements devuelve los movimientos escritos por este Ledger (para publicar tras el commit).
func (l *Ledger) Movements() []*entity.StockMovement {
	return l.written
}

// LockAll bloquea las posiciones indicadas en orden ascendente (tienda, variante).
// Los flujos multi-línea lo llaman antes de mutar para que dos transacciones concurrentes
// siempre tomen los locks en el mismo orden. Las posiciones inexistentes se ignoran.
func (l *Ledger) LockAll(ctx context.Context, keys []entity.PositionKey) error {
	for _, k := range sortedKeys(keys) {
		if _, err := l.lock(ctx, k.StoreID, k.VariantID); err != nil {
			return err
		}
	}
	return nil
}

// EnsureAll es LockAll para flujos que suman existencia: crea en cero las posiciones que
// falten, en el mismo orden ascendente, y las deja bloqueadas.
func (l *Ledger) EnsureAll(ctx context.Context, keys []entity.PositionKey) error {
	for _, k := range sortedKeys(keys) {
		if _, err := l.EnsurePosition(ctx, k.StoreID, k.VariantID); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(keys []entity.PositionKey) []entity.PositionKey {
	sorted := make([]entity.PositionKey, 0, len(keys))
	seen := make(map[entity.PositionKey]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			sorted = append(sorted, k)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return sorted
}

// Position devuelve la posición bloqueada (nil si no existe).
func (l *Ledger) Position(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	return l.lock(ctx, storeID, variantID)
}

// EnsurePosition crea la posición en cero si no existe y la devuelve bloqueada.
func (l *Ledger) EnsurePosition(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	if storeID == "" || variantID == "" {
		return nil, domain.Invalid("tienda y variante son obligatorias")
	}
	p, err := l.lock(ctx, storeID, variantID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	if err := l.stock.Ensure(ctx, storeID, variantID); err != nil {
		return nil, err
	}
	p, err = l.lock(ctx, storeID, variantID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("ensure position %s/%s: fila no visible tras insertar", storeID, variantID)
	}
	return p, nil
}

// CheckAvailable falla con ErrInsufficientStock si disponible < qty. Posición inexistente = 0 disponible.
func (l *Ledger) CheckAvailable(ctx context.Context, storeID, variantID string, qty decimal.Decimal) error {
	p, err := l.lock(ctx, storeID, variantID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &entity.StockPosition{StoreID: storeID, VariantID: variantID}
	}
	return inventory.CheckAvailable(p, qty)
}

// Decrement revalida disponibilidad, resta de Quantity y registra el movimiento (change negativo).
// Falla con ErrPositionNotFound si la posición nunca fue creada.
func (l *Ledger) Decrement(ctx context.Context, e Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	p, err := l.lock(ctx, e.StoreID, e.VariantID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NewLineError(domain.ErrPositionNotFound, -1, e.VariantID, "tienda "+e.StoreID)
	}
	if err := inventory.Decrease(p, e.Quantity); err != nil {
		return err
	}
	cost := p.LastCost
	if e.UnitCost != nil {
		cost = *e.UnitCost
	}
	return l.persist(ctx, p, e, e.Quantity.Neg(), cost)
}

// Increment suma a Quantity (creando la posición si hace falta) y registra el movimiento.
func (l *Ledger) Increment(ctx context.Context, e Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	p, err := l.EnsurePosition(ctx, e.StoreID, e.VariantID)
	if err != nil {
		return err
	}
	if err := inventory.Increase(p, e.Quantity, e.UnitCost); err != nil {
		return err
	}
	cost := p.LastCost
	if e.UnitCost != nil {
		cost = *e.UnitCost
	}
	return l.persist(ctx, p, e, e.Quantity, cost)
}

// Reserve aparta qty. Falla con ErrInsufficientStock si Reserved superaría Quantity.
func (l *Ledger) Reserve(ctx context.Context, storeID, variantID string, qty decimal.Decimal) error {
	p, err := l.lock(ctx, storeID, variantID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &entity.StockPosition{StoreID: storeID, VariantID: variantID}
		return inventory.Reserve(p, qty)
	}
	if err := inventory.Reserve(p, qty); err != nil {
		return err
	}
	return l.update(ctx, p)
}

// Release libera qty de lo apartado.
func (l *Ledger) Release(ctx context.Context, storeID, variantID string, qty decimal.Decimal) error {
	p, err := l.lock(ctx, storeID, variantID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NewLineError(domain.ErrPositionNotFound, -1, variantID, "tienda "+storeID)
	}
	if err := inventory.Release(p, qty); err != nil {
		return err
	}
	return l.update(ctx, p)
}

func (l *Ledger) lock(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	key := entity.PositionKey{StoreID: storeID, VariantID: variantID}
	if p, ok := l.locked[key]; ok {
		return p, nil
	}
	p, err := l.stock.GetForUpdate(ctx, storeID, variantID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		l.locked[key] = p
	}
	return p, nil
}

func (l *Ledger) update(ctx context.Context, p *entity.StockPosition) error {
	if err := inventory.CheckInvariant(p); err != nil {
		return err
	}
	p.UpdatedAt = l.now()
	return l.stock.Update(ctx, p)
}

func (l *Ledger) persist(ctx context.Context, p *entity.StockPosition, e Entry, change, cost decimal.Decimal) error {
	if err := l.update(ctx, p); err != nil {
		return err
	}
	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		StoreID:      e.StoreID,
		VariantID:    e.VariantID,
		Change:       change,
		MovementType: e.MovementType,
		ReferenceID:  e.ReferenceID,
		Reason:       e.Reason,
		ActorID:      e.ActorID,
		UnitCost:     cost,
		CreatedAt:    p.UpdatedAt,
	}
	if err := l.movements.Create(ctx, mov); err != nil {
		return err
	}
	l.written = append(l.written, mov)
	return nil
}

func validateEntry(e Entry) error {
	if e.StoreID == "" || e.VariantID == "" {
		return domain.Invalid("tienda y variante son obligatorias")
	}
	if !entity.IsValidMovementType(e.MovementType) {
		return domain.Invalid("tipo de movimiento desconocido: " + e.MovementType)
	}
	if !e.Quantity.GreaterThan(decimal.Zero) {
		return domain.NewLineError(domain.ErrValidation, -1, e.VariantID, "la cantidad debe ser mayor que cero")
	}
	return nil
}

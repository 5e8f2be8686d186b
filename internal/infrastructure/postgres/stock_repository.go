package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const positionColumns = `store_id, variant_id, quantity, reserved, last_cost, avg_cost, updated_at`

func scanPosition(row pgx.Row) (*entity.StockPosition, error) {
	var p entity.StockPosition
	if err := row.Scan(&p.StoreID, &p.VariantID, &p.Quantity, &p.Reserved, &p.LastCost, &p.AvgCost, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get obtiene la posición de una variante en una tienda; nil si no existe.
func (r *StockRepo) Get(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	query := `SELECT ` + positionColumns + ` FROM stock_positions WHERE store_id = $1 AND variant_id = $2`
	p, err := scanPosition(r.q.QueryRow(ctx, query, storeID, variantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock position: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene la posición y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	query := `SELECT ` + positionColumns + ` FROM stock_positions WHERE store_id = $1 AND variant_id = $2 FOR UPDATE`
	p, err := scanPosition(r.q.QueryRow(ctx, query, storeID, variantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock position for update: %w", err)
	}
	return p, nil
}

// Ensure inserta la posición en cero; no hace nada si ya existe.
func (r *StockRepo) Ensure(ctx context.Context, storeID, variantID string) error {
	query := `
		INSERT INTO stock_positions (store_id, variant_id, quantity, reserved, last_cost, avg_cost, updated_at)
		VALUES ($1, $2, 0, 0, 0, 0, now())
		ON CONFLICT (store_id, variant_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, storeID, variantID); err != nil {
		return fmt.Errorf("ensure stock position: %w", err)
	}
	return nil
}

// Update persiste cantidades y costos de una posición ya bloqueada.
func (r *StockRepo) Update(ctx context.Context, p *entity.StockPosition) error {
	query := `
		UPDATE stock_positions
		SET quantity = $3, reserved = $4, last_cost = $5, avg_cost = $6, updated_at = $7
		WHERE store_id = $1 AND variant_id = $2`
	tag, err := r.q.Exec(ctx, query, p.StoreID, p.VariantID, p.Quantity, p.Reserved, p.LastCost, p.AvgCost, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock position %s/%s: fila inexistente", p.StoreID, p.VariantID)
	}
	return nil
}

// ListByStore lista las posiciones de una tienda ordenadas por variante.
func (r *StockRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.StockPosition, error) {
	limit, offset = pageArgs(limit, offset)
	query := `SELECT ` + positionColumns + ` FROM stock_positions WHERE store_id = $1 ORDER BY variant_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, storeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock positions: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockPosition
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock position: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo log de movimientos sobre PostgreSQL. Solo inserta y lee.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, store_id, variant_id, change, movement_type, reference_id, reason, actor_id, unit_cost, created_at`

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.StoreID, m.VariantID, m.Change, m.MovementType, m.ReferenceID,
		m.Reason, nullIfEmpty(m.ActorID), m.UnitCost, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByPosition lista movimientos de una posición, más recientes primero.
func (r *MovementRepo) ListByPosition(ctx context.Context, storeID, variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	limit, offset = pageArgs(limit, offset)
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE store_id = $1 AND variant_id = $2 ORDER BY seq DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, storeID, variantID, limit, offset)
}

// ListByReference lista movimientos de un documento en orden de registro.
func (r *MovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE reference_id = $1 ORDER BY seq`
	return r.list(ctx, query, referenceID)
}

// SumChange suma los cambios de una posición.
func (r *MovementRepo) SumChange(ctx context.Context, storeID, variantID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(change), 0) FROM stock_movements WHERE store_id = $1 AND variant_id = $2`
	if err := r.q.QueryRow(ctx, query, storeID, variantID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum stock movements: %w", err)
	}
	return sum, nil
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var actor *string
		if err := rows.Scan(&m.ID, &m.StoreID, &m.VariantID, &m.Change, &m.MovementType, &m.ReferenceID,
			&m.Reason, &actor, &m.UnitCost, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.ActorID = deref(actor)
		list = append(list, &m)
	}
	return list, rows.Err()
}

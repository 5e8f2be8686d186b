package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

// ShiftRepo turnos y movimientos de caja sobre PostgreSQL.
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

const shiftColumns = `id, store_id, cashier_id, opening_cash, expected_cash, declared_cash, difference, status, opened_at, closed_at`

func scanShift(row pgx.Row) (*entity.Shift, error) {
	var s entity.Shift
	err := row.Scan(&s.ID, &s.StoreID, &s.CashierID, &s.OpeningCash, &s.ExpectedCash, &s.DeclaredCash,
		&s.Difference, &s.Status, &s.OpenedAt, &s.ClosedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create abre un turno. Un segundo turno abierto en la tienda devuelve ErrDuplicate (índice parcial).
func (r *ShiftRepo) Create(ctx context.Context, s *entity.Shift) error {
	query := `INSERT INTO shifts (` + shiftColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, s.ID, s.StoreID, s.CashierID, s.OpeningCash, s.ExpectedCash,
		s.DeclaredCash, s.Difference, s.Status, s.OpenedAt, s.ClosedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

func (r *ShiftRepo) getOne(ctx context.Context, query string, arg string) (*entity.Shift, error) {
	s, err := scanShift(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return s, nil
}

// GetByID obtiene un turno.
func (r *ShiftRepo) GetByID(ctx context.Context, id string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea un turno.
func (r *ShiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1 FOR UPDATE`, id)
}

// GetOpenByStore devuelve el turno abierto de la tienda.
func (r *ShiftRepo) GetOpenByStore(ctx context.Context, storeID string) (*entity.Shift, error) {
	return r.getOne(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE store_id = $1 AND status = 'open'`, storeID)
}

// Update persiste el cierre del turno.
func (r *ShiftRepo) Update(ctx context.Context, s *entity.Shift) error {
	query := `
		UPDATE shifts SET expected_cash = $2, declared_cash = $3, difference = $4, status = $5, closed_at = $6
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, s.ID, s.ExpectedCash, s.DeclaredCash, s.Difference, s.Status, s.ClosedAt); err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return nil
}

// CreateCashMovement registra un movimiento de caja.
func (r *ShiftRepo) CreateCashMovement(ctx context.Context, m *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (id, shift_id, type, amount, reference_id, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ShiftID, m.Type, m.Amount, m.ReferenceID, m.Reason, m.CreatedBy, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// ListCashMovements lista los movimientos del turno en orden de registro.
func (r *ShiftRepo) ListCashMovements(ctx context.Context, shiftID string) ([]*entity.CashMovement, error) {
	query := `
		SELECT id, shift_id, type, amount, reference_id, reason, created_by, created_at
		FROM cash_movements WHERE shift_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(&m.ID, &m.ShiftID, &m.Type, &m.Amount, &m.ReferenceID, &m.Reason, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumCashMovements suma con signo los movimientos del turno.
func (r *ShiftRepo) SumCashMovements(ctx context.Context, shiftID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM cash_movements WHERE shift_id = $1`, shiftID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum cash movements: %w", err)
	}
	return sum, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

var _ repository.PriceRepository = (*PriceRepo)(nil)

// PriceRepo ventanas de precio sobre PostgreSQL. El índice único parcial
// variant_prices_open_uq garantiza una sola ventana abierta por (tienda, variante).
type PriceRepo struct {
	q Querier
}

// NewPriceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceRepository(q Querier) *PriceRepo {
	return &PriceRepo{q: q}
}

const priceColumns = `id, store_id, variant_id, price, start_at, end_at, created_by, created_at`

// Create inserta una ventana. Una segunda ventana abierta devuelve ErrDuplicate.
func (r *PriceRepo) Create(ctx context.Context, p *entity.VariantPrice) error {
	query := `INSERT INTO variant_prices (` + priceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, p.ID, p.StoreID, p.VariantID, p.Price, p.StartAt, p.EndAt, p.CreatedBy, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert variant price: %w", err)
	}
	return nil
}

// GetOpenForUpdate bloquea la ventana abierta de la posición.
func (r *PriceRepo) GetOpenForUpdate(ctx context.Context, storeID, variantID string) (*entity.VariantPrice, error) {
	query := `SELECT ` + priceColumns + ` FROM variant_prices
		WHERE store_id = $1 AND variant_id = $2 AND end_at IS NULL FOR UPDATE`
	var p entity.VariantPrice
	err := r.q.QueryRow(ctx, query, storeID, variantID).Scan(
		&p.ID, &p.StoreID, &p.VariantID, &p.Price, &p.StartAt, &p.EndAt, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open variant price: %w", err)
	}
	return &p, nil
}

// SetEnd cierra una ventana.
func (r *PriceRepo) SetEnd(ctx context.Context, id string, endAt time.Time) error {
	if _, err := r.q.Exec(ctx, `UPDATE variant_prices SET end_at = $2 WHERE id = $1`, id, endAt); err != nil {
		return fmt.Errorf("close variant price: %w", err)
	}
	return nil
}

// ListByVariant lista ventanas ordenadas por inicio.
func (r *PriceRepo) ListByVariant(ctx context.Context, storeID, variantID string) ([]*entity.VariantPrice, error) {
	query := `SELECT ` + priceColumns + ` FROM variant_prices
		WHERE store_id = $1 AND variant_id = $2 ORDER BY start_at`
	rows, err := r.q.Query(ctx, query, storeID, variantID)
	if err != nil {
		return nil, fmt.Errorf("list variant prices: %w", err)
	}
	defer rows.Close()
	var list []*entity.VariantPrice
	for rows.Next() {
		var p entity.VariantPrice
		if err := rows.Scan(&p.ID, &p.StoreID, &p.VariantID, &p.Price, &p.StartAt, &p.EndAt, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan variant price: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, from_store_id, to_store_id, status, notes, created_by, created_at,
	dispatched_at, completed_at, cancelled_at, updated_at`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(&t.ID, &t.FromStoreID, &t.ToStoreID, &t.Status, &t.Notes, &t.CreatedBy, &t.CreatedAt,
		&t.DispatchedAt, &t.CompletedAt, &t.CancelledAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persiste la cabecera del traslado.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `INSERT INTO transfers (` + transferColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, t.ID, t.FromStoreID, t.ToStoreID, t.Status, t.Notes, t.CreatedBy, t.CreatedAt,
		t.DispatchedAt, t.CompletedAt, t.CancelledAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// CreateItem persiste una línea del traslado.
func (r *TransferRepo) CreateItem(ctx context.Context, it *entity.TransferItem) error {
	query := `
		INSERT INTO transfer_items (id, transfer_id, variant_id, quantity, received_quantity)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, it.ID, it.TransferID, it.VariantID, it.Quantity, it.ReceivedQuantity); err != nil {
		return fmt.Errorf("insert transfer item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la cabecera.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) getOne(ctx context.Context, query, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

// GetItems obtiene las líneas del traslado.
func (r *TransferRepo) GetItems(ctx context.Context, transferID string) ([]*entity.TransferItem, error) {
	query := `
		SELECT id, transfer_id, variant_id, quantity, received_quantity
		FROM transfer_items WHERE transfer_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, transferID)
	if err != nil {
		return nil, fmt.Errorf("get transfer items: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransferItem
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.VariantID, &it.Quantity, &it.ReceivedQuantity); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Update persiste estado y marcas de tiempo.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET status = $2, dispatched_at = $3, completed_at = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, t.ID, t.Status, t.DispatchedAt, t.CompletedAt, t.CancelledAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	return nil
}

// UpdateItem persiste lo recibido de una línea.
func (r *TransferRepo) UpdateItem(ctx context.Context, it *entity.TransferItem) error {
	if _, err := r.q.Exec(ctx, `UPDATE transfer_items SET received_quantity = $2 WHERE id = $1`, it.ID, it.ReceivedQuantity); err != nil {
		return fmt.Errorf("update transfer item: %w", err)
	}
	return nil
}

// ListByStore lista traslados donde la tienda es origen o destino, más recientes primero.
func (r *TransferRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Transfer, error) {
	limit, offset = pageArgs(limit, offset)
	query := `SELECT ` + transferColumns + ` FROM transfers
		WHERE from_store_id = $1 OR to_store_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, storeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

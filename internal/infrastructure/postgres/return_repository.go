package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo devoluciones sobre PostgreSQL.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create persiste la cabecera de la devolución.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.Return) error {
	query := `
		INSERT INTO returns (id, invoice_id, store_id, refund_method, restock, total_refund, status, reason, created_by, approved_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, ret.ID, ret.InvoiceID, ret.StoreID, ret.RefundMethod, ret.Restock,
		ret.TotalRefund, ret.Status, ret.Reason, ret.CreatedBy, nullIfEmpty(ret.ApprovedBy), ret.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// CreateItem persiste una línea devuelta.
func (r *ReturnRepo) CreateItem(ctx context.Context, it *entity.ReturnItem) error {
	query := `
		INSERT INTO return_items (id, return_id, invoice_item_id, variant_id, quantity, unit_price, refund_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, it.ID, it.ReturnID, it.InvoiceItemID, it.VariantID, it.Quantity, it.UnitPrice, it.RefundAmount)
	if err != nil {
		return fmt.Errorf("insert return item: %w", err)
	}
	return nil
}

// ReturnedQuantity suma lo devuelto de una línea, sin contar devoluciones canceladas.
func (r *ReturnRepo) ReturnedQuantity(ctx context.Context, invoiceItemID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(ri.quantity), 0)
		FROM return_items ri JOIN returns rt ON rt.id = ri.return_id
		WHERE ri.invoice_item_id = $1 AND rt.status <> 'cancelled'`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, invoiceItemID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum returned quantity: %w", err)
	}
	return sum, nil
}

// ListByInvoice lista las devoluciones de una factura en orden de creación.
func (r *ReturnRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Return, error) {
	query := `
		SELECT id, invoice_id, store_id, refund_method, restock, total_refund, status, reason, created_by, approved_by, created_at
		FROM returns WHERE invoice_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.Return
	for rows.Next() {
		var ret entity.Return
		var approvedBy *string
		if err := rows.Scan(&ret.ID, &ret.InvoiceID, &ret.StoreID, &ret.RefundMethod, &ret.Restock, &ret.TotalRefund,
			&ret.Status, &ret.Reason, &ret.CreatedBy, &approvedBy, &ret.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		ret.ApprovedBy = deref(approvedBy)
		list = append(list, &ret)
	}
	return list, rows.Err()
}

// GetItems obtiene las líneas de una devolución.
func (r *ReturnRepo) GetItems(ctx context.Context, returnID string) ([]*entity.ReturnItem, error) {
	query := `
		SELECT id, return_id, invoice_item_id, variant_id, quantity, unit_price, refund_amount
		FROM return_items WHERE return_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, returnID)
	if err != nil {
		return nil, fmt.Errorf("get return items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReturnItem
	for rows.Next() {
		var it entity.ReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.InvoiceItemID, &it.VariantID, &it.Quantity, &it.UnitPrice, &it.RefundAmount); err != nil {
			return nil, fmt.Errorf("scan return item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

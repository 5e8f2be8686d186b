package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo órdenes de compra, recepciones y lotes sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const orderColumns = `id, store_id, supplier_id, status, total, notes, created_by, created_at, updated_at`

// CreateOrder persiste la cabecera de la orden.
func (r *PurchaseRepo) CreateOrder(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `INSERT INTO purchase_orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, o.ID, o.StoreID, o.SupplierID, o.Status, o.Total, o.Notes, o.CreatedBy, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la orden.
func (r *PurchaseRepo) CreateItem(ctx context.Context, it *entity.PurchaseItem) error {
	query := `
		INSERT INTO purchase_items (id, order_id, variant_id, quantity, received_quantity, unit_cost, ordered_unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, it.ID, it.OrderID, it.VariantID, it.Quantity, it.ReceivedQuantity, it.UnitCost, it.OrderedUnitCost)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase item: %w", err)
	}
	return nil
}

// GetOrder obtiene la cabecera.
func (r *PurchaseRepo) GetOrder(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetOrderForUpdate obtiene y bloquea la cabecera; serializa recepciones de la misma orden.
func (r *PurchaseRepo) GetOrderForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseRepo) getOrder(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.StoreID, &o.SupplierID, &o.Status, &o.Total, &o.Notes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return &o, nil
}

// GetItems obtiene las líneas de la orden.
func (r *PurchaseRepo) GetItems(ctx context.Context, orderID string) ([]*entity.PurchaseItem, error) {
	query := `
		SELECT id, order_id, variant_id, quantity, received_quantity, unit_cost, ordered_unit_cost
		FROM purchase_items WHERE order_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get purchase items: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseItem
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.VariantID, &it.Quantity, &it.ReceivedQuantity, &it.UnitCost, &it.OrderedUnitCost); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// UpdateOrder persiste estado y total.
func (r *PurchaseRepo) UpdateOrder(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `UPDATE purchase_orders SET status = $2, total = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, o.ID, o.Status, o.Total, o.UpdatedAt); err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return nil
}

// UpdateItem persiste cantidad recibida y último costo.
func (r *PurchaseRepo) UpdateItem(ctx context.Context, it *entity.PurchaseItem) error {
	query := `UPDATE purchase_items SET received_quantity = $2, unit_cost = $3 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, it.ID, it.ReceivedQuantity, it.UnitCost); err != nil {
		return fmt.Errorf("update purchase item: %w", err)
	}
	return nil
}

const receiptColumns = `id, order_id, store_id, receipt_number, total, received_by, received_at`

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var rc entity.Receipt
	if err := row.Scan(&rc.ID, &rc.OrderID, &rc.StoreID, &rc.ReceiptNumber, &rc.Total, &rc.ReceivedBy, &rc.ReceivedAt); err != nil {
		return nil, err
	}
	return &rc, nil
}

// GetReceiptByNumber busca una recepción por su número (llave de idempotencia).
func (r *PurchaseRepo) GetReceiptByNumber(ctx context.Context, number string) (*entity.Receipt, error) {
	rc, err := scanReceipt(r.q.QueryRow(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE receipt_number = $1`, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt by number: %w", err)
	}
	return rc, nil
}

// CreateReceipt persiste la recepción. Número repetido devuelve ErrDuplicate.
func (r *PurchaseRepo) CreateReceipt(ctx context.Context, rc *entity.Receipt) error {
	query := `INSERT INTO receipts (` + receiptColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, rc.ID, rc.OrderID, rc.StoreID, rc.ReceiptNumber, rc.Total, rc.ReceivedBy, rc.ReceivedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// CreateReceiptItem persiste una línea recibida.
func (r *PurchaseRepo) CreateReceiptItem(ctx context.Context, it *entity.ReceiptItem) error {
	query := `
		INSERT INTO receipt_items (id, receipt_id, purchase_item_id, variant_id, lot_id, quantity, unit_cost, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, it.ID, it.ReceiptID, it.PurchaseItemID, it.VariantID, nullIfEmpty(it.LotID),
		it.Quantity, it.UnitCost, it.LineTotal)
	if err != nil {
		return fmt.Errorf("insert receipt item: %w", err)
	}
	return nil
}

// GetReceiptItems obtiene las líneas de una recepción.
func (r *PurchaseRepo) GetReceiptItems(ctx context.Context, receiptID string) ([]*entity.ReceiptItem, error) {
	query := `
		SELECT id, receipt_id, purchase_item_id, variant_id, lot_id, quantity, unit_cost, line_total
		FROM receipt_items WHERE receipt_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("get receipt items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReceiptItem
	for rows.Next() {
		var it entity.ReceiptItem
		var lotID *string
		if err := rows.Scan(&it.ID, &it.ReceiptID, &it.PurchaseItemID, &it.VariantID, &lotID, &it.Quantity, &it.UnitCost, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		it.LotID = deref(lotID)
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListReceipts lista las recepciones de una orden.
func (r *PurchaseRepo) ListReceipts(ctx context.Context, orderID string) ([]*entity.Receipt, error) {
	rows, err := r.q.Query(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE order_id = $1 ORDER BY received_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, rc)
	}
	return list, rows.Err()
}

// CreateLot persiste un lote recibido.
func (r *PurchaseRepo) CreateLot(ctx context.Context, l *entity.StockLot) error {
	query := `
		INSERT INTO stock_lots (id, store_id, variant_id, receipt_id, lot_number, expires_at, quantity, unit_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, l.ID, l.StoreID, l.VariantID, l.ReceiptID, l.LotNumber, l.ExpiresAt, l.Quantity, l.UnitCost, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock lot: %w", err)
	}
	return nil
}

// ListLots lista lotes de una posición, próximos a vencer primero.
func (r *PurchaseRepo) ListLots(ctx context.Context, storeID, variantID string) ([]*entity.StockLot, error) {
	query := `
		SELECT id, store_id, variant_id, receipt_id, lot_number, expires_at, quantity, unit_cost, created_at
		FROM stock_lots WHERE store_id = $1 AND variant_id = $2
		ORDER BY expires_at NULLS LAST, created_at`
	rows, err := r.q.Query(ctx, query, storeID, variantID)
	if err != nil {
		return nil, fmt.Errorf("list stock lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLot
	for rows.Next() {
		var l entity.StockLot
		if err := rows.Scan(&l.ID, &l.StoreID, &l.VariantID, &l.ReceiptID, &l.LotNumber, &l.ExpiresAt, &l.Quantity, &l.UnitCost, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

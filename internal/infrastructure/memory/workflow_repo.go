package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

var (
	_ repository.PriceRepository    = (*PriceRepo)(nil)
	_ repository.ShiftRepository    = (*ShiftRepo)(nil)
	_ repository.InvoiceRepository  = (*InvoiceRepo)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.TransferRepository = (*TransferRepo)(nil)
	_ repository.ReturnRepository   = (*ReturnRepo)(nil)
)

// PriceRepo ventanas de precio en memoria.
type PriceRepo struct{ base }

func (r *PriceRepo) Create(_ context.Context, p *entity.VariantPrice) error {
	defer r.guard()()
	if p.EndAt == nil {
		for _, existing := range r.state().prices {
			if existing.StoreID == p.StoreID && existing.VariantID == p.VariantID && existing.EndAt == nil {
				return domain.ErrDuplicate
			}
		}
	}
	r.state().prices = append(r.state().prices, *p)
	return nil
}

func (r *PriceRepo) GetOpenForUpdate(_ context.Context, storeID, variantID string) (*entity.VariantPrice, error) {
	defer r.guard()()
	for _, p := range r.state().prices {
		if p.StoreID == storeID && p.VariantID == variantID && p.EndAt == nil {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *PriceRepo) SetEnd(_ context.Context, id string, endAt time.Time) error {
	defer r.guard()()
	for i := range r.state().prices {
		if r.state().prices[i].ID == id {
			end := endAt
			r.state().prices[i].EndAt = &end
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *PriceRepo) ListByVariant(_ context.Context, storeID, variantID string) ([]*entity.VariantPrice, error) {
	defer r.guard()()
	var out []*entity.VariantPrice
	for _, p := range r.state().prices {
		if p.StoreID == storeID && p.VariantID == variantID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

// ShiftRepo turnos y caja en memoria.
type ShiftRepo struct{ base }

func (r *ShiftRepo) Create(_ context.Context, s *entity.Shift) error {
	defer r.guard()()
	for _, existing := range r.state().shifts {
		if existing.StoreID == s.StoreID && existing.Status == entity.ShiftStatusOpen {
			return domain.ErrDuplicate
		}
	}
	r.state().shifts[s.ID] = *s
	return nil
}

func (r *ShiftRepo) GetByID(_ context.Context, id string) (*entity.Shift, error) {
	defer r.guard()()
	s, ok := r.state().shifts[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *ShiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shift, error) {
	return r.GetByID(ctx, id)
}

func (r *ShiftRepo) GetOpenByStore(_ context.Context, storeID string) (*entity.Shift, error) {
	defer r.guard()()
	for _, s := range r.state().shifts {
		if s.StoreID == storeID && s.Status == entity.ShiftStatusOpen {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (r *ShiftRepo) Update(_ context.Context, s *entity.Shift) error {
	defer r.guard()()
	if _, ok := r.state().shifts[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.state().shifts[s.ID] = *s
	return nil
}

func (r *ShiftRepo) CreateCashMovement(_ context.Context, m *entity.CashMovement) error {
	defer r.guard()()
	r.state().cash = append(r.state().cash, *m)
	return nil
}

func (r *ShiftRepo) ListCashMovements(_ context.Context, shiftID string) ([]*entity.CashMovement, error) {
	defer r.guard()()
	var out []*entity.CashMovement
	for _, m := range r.state().cash {
		if m.ShiftID == shiftID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *ShiftRepo) SumCashMovements(_ context.Context, shiftID string) (decimal.Decimal, error) {
	defer r.guard()()
	sum := decimal.Zero
	for _, m := range r.state().cash {
		if m.ShiftID == shiftID {
			sum = sum.Add(m.Amount)
		}
	}
	return sum, nil
}

// InvoiceRepo facturas en memoria.
type InvoiceRepo struct{ base }

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	defer r.guard()()
	if _, ok := r.state().invoices[inv.ID]; ok {
		return domain.ErrDuplicate
	}
	r.state().invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepo) CreateItem(_ context.Context, item *entity.InvoiceItem) error {
	defer r.guard()()
	r.state().invoiceItems = append(r.state().invoiceItems, *item)
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	defer r.guard()()
	inv, ok := r.state().invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) GetItems(_ context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	defer r.guard()()
	var out []*entity.InvoiceItem
	for _, it := range r.state().invoiceItems {
		if it.InvoiceID == invoiceID {
			it := it
			out = append(out, &it)
		}
	}
	return out, nil
}

func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	defer r.guard()()
	if _, ok := r.state().invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	r.state().invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepo) ListHeldByStore(_ context.Context, storeID string) ([]*entity.Invoice, error) {
	defer r.guard()()
	var out []*entity.Invoice
	for _, inv := range r.state().invoices {
		if inv.StoreID == storeID && inv.IsHeld() {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// PurchaseRepo órdenes de compra, recepciones y lotes en memoria.
type PurchaseRepo struct{ base }

func (r *PurchaseRepo) CreateOrder(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.guard()()
	r.state().orders[o.ID] = *o
	return nil
}

func (r *PurchaseRepo) CreateItem(_ context.Context, it *entity.PurchaseItem) error {
	defer r.guard()()
	r.state().purchaseItems = append(r.state().purchaseItems, *it)
	return nil
}

func (r *PurchaseRepo) GetOrder(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	defer r.guard()()
	o, ok := r.state().orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *PurchaseRepo) GetOrderForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetOrder(ctx, id)
}

func (r *PurchaseRepo) GetItems(_ context.Context, orderID string) ([]*entity.PurchaseItem, error) {
	defer r.guard()()
	var out []*entity.PurchaseItem
	for _, it := range r.state().purchaseItems {
		if it.OrderID == orderID {
			it := it
			out = append(out, &it)
		}
	}
	return out, nil
}

func (r *PurchaseRepo) UpdateOrder(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.guard()()
	if _, ok := r.state().orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.state().orders[o.ID] = *o
	return nil
}

func (r *PurchaseRepo) UpdateItem(_ context.Context, it *entity.PurchaseItem) error {
	defer r.guard()()
	for i := range r.state().purchaseItems {
		if r.state().purchaseItems[i].ID == it.ID {
			r.state().purchaseItems[i] = *it
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *PurchaseRepo) GetReceiptByNumber(_ context.Context, number string) (*entity.Receipt, error) {
	defer r.guard()()
	for _, rc := range r.state().receipts {
		if rc.ReceiptNumber == number {
			rc := rc
			return &rc, nil
		}
	}
	return nil, nil
}

func (r *PurchaseRepo) CreateReceipt(_ context.Context, rc *entity.Receipt) error {
	defer r.guard()()
	for _, existing := range r.state().receipts {
		if existing.ReceiptNumber == rc.ReceiptNumber {
			return domain.ErrDuplicate
		}
	}
	r.state().receipts = append(r.state().receipts, *rc)
	return nil
}

func (r *PurchaseRepo) CreateReceiptItem(_ context.Context, it *entity.ReceiptItem) error {
	defer r.guard()()
	r.state().receiptItems = append(r.state().receiptItems, *it)
	return nil
}

func (r *PurchaseRepo) GetReceiptItems(_ context.Context, receiptID string) ([]*entity.ReceiptItem, error) {
	defer r.guard()()
	var out []*entity.ReceiptItem
	for _, it := range r.state().receiptItems {
		if it.ReceiptID == receiptID {
			it := it
			out = append(out, &it)
		}
	}
	return out, nil
}

func (r *PurchaseRepo) ListReceipts(_ context.Context, orderID string) ([]*entity.Receipt, error) {
	defer r.guard()()
	var out []*entity.Receipt
	for _, rc := range r.state().receipts {
		if rc.OrderID == orderID {
			rc := rc
			out = append(out, &rc)
		}
	}
	return out, nil
}

func (r *PurchaseRepo) CreateLot(_ context.Context, lot *entity.StockLot) error {
	defer r.guard()()
	r.state().lots = append(r.state().lots, *lot)
	return nil
}

func (r *PurchaseRepo) ListLots(_ context.Context, storeID, variantID string) ([]*entity.StockLot, error) {
	defer r.guard()()
	var out []*entity.StockLot
	for _, lot := range r.state().lots {
		if lot.StoreID == storeID && lot.VariantID == variantID {
			lot := lot
			out = append(out, &lot)
		}
	}
	return out, nil
}

// TransferRepo traslados en memoria.
type TransferRepo struct{ base }

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	defer r.guard()()
	r.state().transfers[t.ID] = *t
	return nil
}

func (r *TransferRepo) CreateItem(_ context.Context, it *entity.TransferItem) error {
	defer r.guard()()
	r.state().transferItems = append(r.state().transferItems, *it)
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	defer r.guard()()
	t, ok := r.state().transfers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) GetItems(_ context.Context, transferID string) ([]*entity.TransferItem, error) {
	defer r.guard()()
	var out []*entity.TransferItem
	for _, it := range r.state().transferItems {
		if it.TransferID == transferID {
			it := it
			out = append(out, &it)
		}
	}
	return out, nil
}

func (r *TransferRepo) Update(_ context.Context, t *entity.Transfer) error {
	defer r.guard()()
	if _, ok := r.state().transfers[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.state().transfers[t.ID] = *t
	return nil
}

func (r *TransferRepo) UpdateItem(_ context.Context, it *entity.TransferItem) error {
	defer r.guard()()
	for i := range r.state().transferItems {
		if r.state().transferItems[i].ID == it.ID {
			r.state().transferItems[i] = *it
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *TransferRepo) ListByStore(_ context.Context, storeID string, limit, offset int) ([]*entity.Transfer, error) {
	defer r.guard()()
	var list []entity.Transfer
	for _, t := range r.state().transfers {
		if t.FromStoreID == storeID || t.ToStoreID == storeID {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	out := make([]*entity.Transfer, 0, len(list))
	for _, t := range page(list, limit, offset) {
		t := t
		out = append(out, &t)
	}
	return out, nil
}

// ReturnRepo devoluciones en memoria.
type ReturnRepo struct{ base }

func (r *ReturnRepo) Create(_ context.Context, ret *entity.Return) error {
	defer r.guard()()
	r.state().returns = append(r.state().returns, *ret)
	return nil
}

func (r *ReturnRepo) CreateItem(_ context.Context, it *entity.ReturnItem) error {
	defer r.guard()()
	r.state().returnItems = append(r.state().returnItems, *it)
	return nil
}

func (r *ReturnRepo) ReturnedQuantity(_ context.Context, invoiceItemID string) (decimal.Decimal, error) {
	defer r.guard()()
	cancelled := make(map[string]bool)
	for _, ret := range r.state().returns {
		if ret.Status == entity.ReturnStatusCancelled {
			cancelled[ret.ID] = true
		}
	}
	sum := decimal.Zero
	for _, it := range r.state().returnItems {
		if it.InvoiceItemID == invoiceItemID && !cancelled[it.ReturnID] {
			sum = sum.Add(it.Quantity)
		}
	}
	return sum, nil
}

func (r *ReturnRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.Return, error) {
	defer r.guard()()
	var out []*entity.Return
	for _, ret := range r.state().returns {
		if ret.InvoiceID == invoiceID {
			ret := ret
			out = append(out, &ret)
		}
	}
	return out, nil
}

func (r *ReturnRepo) GetItems(_ context.Context, returnID string) ([]*entity.ReturnItem, error) {
	defer r.guard()()
	var out []*entity.ReturnItem
	for _, it := range r.state().returnItems {
		if it.ReturnID == returnID {
			it := it
			out = append(out, &it)
		}
	}
	return out, nil
}

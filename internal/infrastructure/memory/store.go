// Package memory implementa los repositorios y el TxRunner en memoria.
// Run serializa transacciones completas bajo un mutex y restaura una copia del estado
// si fn falla, así que ofrece las mismas garantías todo-o-nada que PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	positions     map[entity.PositionKey]entity.StockPosition
	movements     []entity.StockMovement
	stores        map[string]entity.Store
	variants      map[string]entity.Variant
	users         map[string]entity.User
	prices        []entity.VariantPrice
	shifts        map[string]entity.Shift
	cash          []entity.CashMovement
	invoices      map[string]entity.Invoice
	invoiceItems  []entity.InvoiceItem
	orders        map[string]entity.PurchaseOrder
	purchaseItems []entity.PurchaseItem
	receipts      []entity.Receipt
	receiptItems  []entity.ReceiptItem
	lots          []entity.StockLot
	transfers     map[string]entity.Transfer
	transferItems []entity.TransferItem
	returns       []entity.Return
	returnItems   []entity.ReturnItem
}

func newState() *state {
	return &state{
		positions: make(map[entity.PositionKey]entity.StockPosition),
		stores:    make(map[string]entity.Store),
		variants:  make(map[string]entity.Variant),
		users:     make(map[string]entity.User),
		shifts:    make(map[string]entity.Shift),
		invoices:  make(map[string]entity.Invoice),
		orders:    make(map[string]entity.PurchaseOrder),
		transfers: make(map[string]entity.Transfer),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.positions {
		c.positions[k] = v
	}
	for k, v := range s.stores {
		c.stores[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.shifts {
		c.shifts[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	c.prices = append([]entity.VariantPrice(nil), s.prices...)
	c.cash = append([]entity.CashMovement(nil), s.cash...)
	c.invoiceItems = append([]entity.InvoiceItem(nil), s.invoiceItems...)
	c.purchaseItems = append([]entity.PurchaseItem(nil), s.purchaseItems...)
	c.receipts = append([]entity.Receipt(nil), s.receipts...)
	c.receiptItems = append([]entity.ReceiptItem(nil), s.receiptItems...)
	c.lots = append([]entity.StockLot(nil), s.lots...)
	c.transferItems = append([]entity.TransferItem(nil), s.transferItems...)
	c.returns = append([]entity.Return(nil), s.returns...)
	c.returnItems = append([]entity.ReturnItem(nil), s.returnItems...)
	return c
}

// Store estado en memoria protegido por un mutex.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn con repositorios transaccionales. Si fn falla se restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(s.repos(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el mutex).
func (s *Store) Repos() ports.Repos {
	return s.repos(false)
}

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo {
	return &UserRepo{base{s: s}}
}

func (s *Store) repos(tx bool) ports.Repos {
	b := base{s: s, tx: tx}
	return ports.Repos{
		Stock:     &StockRepo{b},
		Movements: &MovementRepo{b},
		Stores:    &StoreRepo{b},
		Variants:  &VariantRepo{b},
		Prices:    &PriceRepo{b},
		Shifts:    &ShiftRepo{b},
		Invoices:  &InvoiceRepo{b},
		Purchases: &PurchaseRepo{b},
		Transfers: &TransferRepo{b},
		Returns:   &ReturnRepo{b},
	}
}

// base comparte el acceso al estado. Dentro de Run el mutex ya está tomado.
type base struct {
	s  *Store
	tx bool
}

func (b base) guard() func() {
	if b.tx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

func (b base) state() *state { return b.s.st }

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

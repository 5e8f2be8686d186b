// Package purchasing gestiona órdenes de compra y su recepción idempotente con lotes.
package purchasing

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

var tracer = tracing.Tracer("purchasing")

// OrderLine línea de una orden nueva.
type OrderLine struct {
	VariantID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// CreateOrderInput entrada de CreateOrder.
type CreateOrderInput struct {
	StoreID    string
	SupplierID string
	Notes      string
	ActorID    string
	Lines      []OrderLine
}

// OrderView orden con sus líneas y recepciones.
type OrderView struct {
	Order    *entity.PurchaseOrder
	Items    []*entity.PurchaseItem
	Receipts []*entity.Receipt
}

// Engine motor de compras.
type Engine struct {
	tx        ports.TxRunner
	purchases repository.PurchaseRepository
	publisher ports.MovementPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewEngine construye el motor. purchases es de lectura (pool).
func NewEngine(tx ports.TxRunner, purchases repository.PurchaseRepository, publisher ports.MovementPublisher, log *logger.Logger) *Engine {
	if publisher == nil {
		publisher = ports.NoopPublisher{}
	}
	return &Engine{tx: tx, purchases: purchases, publisher: publisher, log: log, now: time.Now}
}

// CreateOrder crea una orden en borrador. Total = Σ cantidad × costo.
func (e *Engine) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderView, error) {
	if in.StoreID == "" || in.SupplierID == "" {
		return nil, domain.Invalid("tienda y proveedor son obligatorios")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("la orden no tiene líneas")
	}
	seen := make(map[string]bool, len(in.Lines))
	for i, l := range in.Lines {
		if l.VariantID == "" {
			return nil, domain.InvalidLine(i, "", "variante obligatoria")
		}
		if seen[l.VariantID] {
			return nil, domain.InvalidLine(i, l.VariantID, "variante repetida en la orden")
		}
		seen[l.VariantID] = true
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.InvalidLine(i, l.VariantID, "la cantidad debe ser mayor que cero")
		}
		if l.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.InvalidLine(i, l.VariantID, "el costo no puede ser negativo")
		}
	}

	now := e.now()
	view := &OrderView{}
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		store, err := r.Stores.GetByID(ctx, in.StoreID)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.Invalid("tienda inexistente")
		}
		order := &entity.PurchaseOrder{
			ID:         uuid.New().String(),
			StoreID:    in.StoreID,
			SupplierID: in.SupplierID,
			Status:     entity.PurchaseStatusDraft,
			Total:      decimal.Zero,
			Notes:      in.Notes,
			CreatedBy:  in.ActorID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		for _, l := range in.Lines {
			order.Total = order.Total.Add(l.Quantity.Mul(l.UnitCost))
		}
		if err := r.Purchases.CreateOrder(ctx, order); err != nil {
			return err
		}
		view.Order = order
		for i, l := range in.Lines {
			v, err := r.Variants.GetByID(ctx, l.VariantID)
			if err != nil {
				return err
			}
			if v == nil {
				return domain.InvalidLine(i, l.VariantID, "variante inexistente")
			}
			item := &entity.PurchaseItem{
				ID:               uuid.New().String(),
				OrderID:          order.ID,
				VariantID:        l.VariantID,
				Quantity:         l.Quantity,
				ReceivedQuantity: decimal.Zero,
				UnitCost:         l.UnitCost,
				OrderedUnitCost:  l.UnitCost,
			}
			if err := r.Purchases.CreateItem(ctx, item); err != nil {
				return err
			}
			view.Items = append(view.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("order_id", view.Order.ID).Str("store_id", in.StoreID).Int("lines", len(view.Items)).Msg("orden de compra creada")
	return view, nil
}

// Submit pasa la orden de borrador a enviada.
func (e *Engine) Submit(ctx context.Context, orderID string, scope entity.Scope) (*entity.PurchaseOrder, error) {
	return e.transition(ctx, orderID, scope, entity.PurchaseStatusDraft, entity.PurchaseStatusSubmitted)
}

// Approve pasa la orden de enviada a aprobada.
func (e *Engine) Approve(ctx context.Context, orderID string, scope entity.Scope) (*entity.PurchaseOrder, error) {
	return e.transition(ctx, orderID, scope, entity.PurchaseStatusSubmitted, entity.PurchaseStatusApproved)
}

func (e *Engine) transition(ctx context.Context, orderID string, scope entity.Scope, from, to string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		order, err := r.Purchases.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !scope.Allows(order.StoreID) {
			return domain.ErrForbidden
		}
		if order.Status != from {
			return domain.Invalid("la orden está en estado " + order.Status + ", se esperaba " + from)
		}
		order.Status = to
		order.UpdatedAt = e.now()
		if err := r.Purchases.UpdateOrder(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Document("purchase_order", orderID).Info().Str("status", to).Msg("orden de compra actualizada")
	return out, nil
}

// Cancel cancela una orden abierta sin recepciones. Falla con ErrNotCancellable en otro caso.
func (e *Engine) Cancel(ctx context.Context, orderID string, scope entity.Scope) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		order, err := r.Purchases.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !scope.Allows(order.StoreID) {
			return domain.ErrForbidden
		}
		if !entity.IsReceivableStatus(order.Status) {
			return domain.NewLineError(domain.ErrNotCancellable, -1, "", "estado "+order.Status)
		}
		items, err := r.Purchases.GetItems(ctx, order.ID)
		if err != nil {
			return err
		}
		for i, it := range items {
			if it.ReceivedQuantity.GreaterThan(decimal.Zero) {
				return domain.NewLineError(domain.ErrNotCancellable, i, it.VariantID, "la orden ya tiene mercancía recibida")
			}
		}
		order.Status = entity.PurchaseStatusCancelled
		order.UpdatedAt = e.now()
		if err := r.Purchases.UpdateOrder(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Document("purchase_order", orderID).Info().Msg("orden de compra cancelada")
	return out, nil
}

// GetOrder devuelve la orden con líneas y recepciones.
func (e *Engine) GetOrder(ctx context.Context, orderID string, scope entity.Scope) (*OrderView, error) {
	order, err := e.purchases.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !scope.Allows(order.StoreID) {
		return nil, domain.ErrForbidden
	}
	items, err := e.purchases.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	receipts, err := e.purchases.ListReceipts(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderView{Order: order, Items: items, Receipts: receipts}, nil
}

// ListLots lista los lotes recibidos de una variante en una tienda.
func (e *Engine) ListLots(ctx context.Context, storeID, variantID string) ([]*entity.StockLot, error) {
	if storeID == "" || variantID == "" {
		return nil, domain.Invalid("tienda y variante son obligatorias")
	}
	return e.purchases.ListLots(ctx, storeID, variantID)
}

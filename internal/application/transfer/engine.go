// Package transfer mueve stock entre tiendas: reserva en origen, despacho, recepción parcial o total en destino.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
	"github.com/jhoicas/retail-ledger-api/pkg/tracing"
)

var tracer = tracing.Tracer("transfer")

// Line línea de traslado.
type Line struct {
	VariantID string
	Quantity  decimal.Decimal
}

// CreateInput entrada de Create.
type CreateInput struct {
	FromStoreID string
	ToStoreID   string
	Notes       string
	ActorID     string
	Lines       []Line
}

// ReceiveInput entrada de Receive. Sin líneas se recibe todo lo pendiente.
type ReceiveInput struct {
	TransferID string
	ActorID    string
	Lines      []Line
	Scope      entity.Scope
}

// View traslado con sus líneas.
type View struct {
	Transfer *entity.Transfer
	Items    []*entity.TransferItem
}

// Engine motor de traslados.
type Engine struct {
	tx        ports.TxRunner
	transfers repository.TransferRepository
	publisher ports.MovementPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewEngine construye el motor. transfers es de lectura (pool).
func NewEngine(tx ports.TxRunner, transfers repository.TransferRepository, publisher ports.MovementPublisher, log *logger.Logger) *Engine {
	if publisher == nil {
		publisher = ports.NoopPublisher{}
	}
	return &Engine{tx: tx, transfers: transfers, publisher: publisher, log: log, now: time.Now}
}

// Create registra el traslado en pendiente y aparta el stock en origen. Variantes repetidas se suman.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*View, error) {
	if in.FromStoreID == "" || in.ToStoreID == "" {
		return nil, domain.Invalid("tienda de origen y destino son obligatorias")
	}
	if in.FromStoreID == in.ToStoreID {
		return nil, domain.Invalid("origen y destino deben ser distintos")
	}
	lines, first, err := mergeLines(in.Lines)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "transfer.Create")

	now := e.now()
	var view *View
	err = e.tx.Run(ctx, func(r ports.Repos) error {
		for _, storeID := range []string{in.FromStoreID, in.ToStoreID} {
			s, err := r.Stores.GetByID(ctx, storeID)
			if err != nil {
				return err
			}
			if s == nil {
				return domain.Invalid("tienda inexistente: " + storeID)
			}
		}
		t := &entity.Transfer{
			ID:          uuid.New().String(),
			FromStoreID: in.FromStoreID,
			ToStoreID:   in.ToStoreID,
			Status:      entity.TransferStatusPending,
			Notes:       in.Notes,
			CreatedBy:   in.ActorID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.Transfers.Create(ctx, t); err != nil {
			return err
		}
		view = &View{Transfer: t}

		lg := ledger.New(r.Stock, r.Movements)
		if err := lg.LockAll(ctx, keysFor(in.FromStoreID, lines)); err != nil {
			return err
		}
		for _, l := range lines {
			if err := lg.Reserve(ctx, in.FromStoreID, l.VariantID, l.Quantity); err != nil {
				return domain.AtLine(err, first[l.VariantID])
			}
			item := &entity.TransferItem{
				ID:               uuid.New().String(),
				TransferID:       t.ID,
				VariantID:        l.VariantID,
				Quantity:         l.Quantity,
				ReceivedQuantity: decimal.Zero,
			}
			if err := r.Transfers.CreateItem(ctx, item); err != nil {
				return err
			}
			view.Items = append(view.Items, item)
		}
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("transfer_id", view.Transfer.ID).Str("from", in.FromStoreID).Str("to", in.ToStoreID).
		Int("lines", len(view.Items)).Msg("traslado creado")
	return view, nil
}

// Dispatch libera la reserva y descuenta el stock de origen. Solo desde pendiente y desde la tienda de origen.
func (e *Engine) Dispatch(ctx context.Context, transferID, actorID string, scope entity.Scope) (*View, error) {
	ctx, span := tracer.Start(ctx, "transfer.Dispatch")
	var view *View
	var lg *ledger.Ledger
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		t, items, err := lockTransfer(ctx, r, transferID)
		if err != nil {
			return err
		}
		if !scope.Allows(t.FromStoreID) {
			return domain.ErrForbidden
		}
		if t.Status != entity.TransferStatusPending {
			return domain.NewLineError(domain.ErrNotDispatchable, -1, "", "estado "+t.Status)
		}
		lg = ledger.New(r.Stock, r.Movements)
		if err := lg.LockAll(ctx, itemKeys(t.FromStoreID, items)); err != nil {
			return err
		}
		for i, it := range items {
			if err := lg.Release(ctx, t.FromStoreID, it.VariantID, it.Quantity); err != nil {
				return domain.AtLine(err, i)
			}
			if err := lg.Decrement(ctx, ledger.Entry{
				StoreID:      t.FromStoreID,
				VariantID:    it.VariantID,
				Quantity:     it.Quantity,
				MovementType: entity.MovementTypeTransferOut,
				ReferenceID:  t.ID,
				Reason:       "traslado a " + t.ToStoreID,
				ActorID:      actorID,
			}); err != nil {
				return domain.AtLine(err, i)
			}
		}
		now := e.now()
		t.Status = entity.TransferStatusInTransit
		t.DispatchedAt = &now
		t.UpdatedAt = now
		if err := r.Transfers.Update(ctx, t); err != nil {
			return err
		}
		view = &View{Transfer: t, Items: items}
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	ledger.Publish(ctx, e.publisher, e.log, lg.Movements())
	e.log.Document("transfer", transferID).Info().Msg("traslado despachado")
	return view, nil
}

// Receive ingresa en destino lo recibido, al último costo de origen. Completa el traslado
// cuando todas las líneas están recibidas.
func (e *Engine) Receive(ctx context.Context, in ReceiveInput) (*View, error) {
	for i, l := range in.Lines {
		if l.VariantID == "" {
			return nil, domain.InvalidLine(i, "", "variante obligatoria")
		}
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.InvalidLine(i, l.VariantID, "la cantidad debe ser mayor que cero")
		}
	}
	ctx, span := tracer.Start(ctx, "transfer.Receive")
	var view *View
	var lg *ledger.Ledger
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		t, items, err := lockTransfer(ctx, r, in.TransferID)
		if err != nil {
			return err
		}
		if !in.Scope.Allows(t.ToStoreID) {
			return domain.ErrForbidden
		}
		if t.Status != entity.TransferStatusInTransit {
			return domain.NewLineError(domain.ErrNotReceivable, -1, "", "estado "+t.Status)
		}

		type receipt struct {
			index int
			item  *entity.TransferItem
			qty   decimal.Decimal
		}
		var plan []receipt
		if len(in.Lines) == 0 {
			for i, it := range items {
				if rem := it.Remaining(); rem.GreaterThan(decimal.Zero) {
					plan = append(plan, receipt{index: i, item: it, qty: rem})
				}
			}
		} else {
			byVariant := make(map[string]*entity.TransferItem, len(items))
			for _, it := range items {
				byVariant[it.VariantID] = it
			}
			requested := make(map[string]decimal.Decimal)
			for i, l := range in.Lines {
				it, ok := byVariant[l.VariantID]
				if !ok {
					return domain.InvalidLine(i, l.VariantID, "la variante no pertenece al traslado")
				}
				requested[it.ID] = requested[it.ID].Add(l.Quantity)
				if requested[it.ID].GreaterThan(it.Remaining()) {
					return domain.InvalidLine(i, l.VariantID,
						fmt.Sprintf("pendiente %s, recibido %s", it.Remaining(), requested[it.ID]))
				}
				plan = append(plan, receipt{index: i, item: it, qty: l.Quantity})
			}
		}

		lg = ledger.New(r.Stock, r.Movements)
		keys := itemKeys(t.FromStoreID, items)
		keys = append(keys, itemKeys(t.ToStoreID, items)...)
		if err := lg.EnsureAll(ctx, keys); err != nil {
			return err
		}
		for _, p := range plan {
			origin, err := lg.Position(ctx, t.FromStoreID, p.item.VariantID)
			if err != nil {
				return err
			}
			cost := decimal.Zero
			if origin != nil {
				cost = origin.LastCost
			}
			if err := lg.Increment(ctx, ledger.Entry{
				StoreID:      t.ToStoreID,
				VariantID:    p.item.VariantID,
				Quantity:     p.qty,
				MovementType: entity.MovementTypeTransferIn,
				ReferenceID:  t.ID,
				Reason:       "traslado desde " + t.FromStoreID,
				ActorID:      in.ActorID,
				UnitCost:     &cost,
			}); err != nil {
				return domain.AtLine(err, p.index)
			}
			p.item.ReceivedQuantity = p.item.ReceivedQuantity.Add(p.qty)
			if err := r.Transfers.UpdateItem(ctx, p.item); err != nil {
				return err
			}
		}

		complete := true
		for _, it := range items {
			if it.Remaining().GreaterThan(decimal.Zero) {
				complete = false
				break
			}
		}
		now := e.now()
		if complete {
			t.Status = entity.TransferStatusCompleted
			t.CompletedAt = &now
		}
		t.UpdatedAt = now
		if err := r.Transfers.Update(ctx, t); err != nil {
			return err
		}
		view = &View{Transfer: t, Items: items}
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	ledger.Publish(ctx, e.publisher, e.log, lg.Movements())
	e.log.Info().Str("transfer_id", in.TransferID).Str("status", view.Transfer.Status).Msg("traslado recibido")
	return view, nil
}

// Cancel anula un traslado pendiente y libera su reserva. Solo desde la tienda de origen.
func (e *Engine) Cancel(ctx context.Context, transferID string, scope entity.Scope) (*View, error) {
	var view *View
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		t, items, err := lockTransfer(ctx, r, transferID)
		if err != nil {
			return err
		}
		if !scope.Allows(t.FromStoreID) {
			return domain.ErrForbidden
		}
		if t.Status != entity.TransferStatusPending {
			return domain.NewLineError(domain.ErrNotCancellable, -1, "", "estado "+t.Status)
		}
		lg := ledger.New(r.Stock, r.Movements)
		if err := lg.LockAll(ctx, itemKeys(t.FromStoreID, items)); err != nil {
			return err
		}
		for i, it := range items {
			if err := lg.Release(ctx, t.FromStoreID, it.VariantID, it.Quantity); err != nil {
				return domain.AtLine(err, i)
			}
		}
		now := e.now()
		t.Status = entity.TransferStatusCancelled
		t.CancelledAt = &now
		t.UpdatedAt = now
		if err := r.Transfers.Update(ctx, t); err != nil {
			return err
		}
		view = &View{Transfer: t, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Document("transfer", transferID).Info().Msg("traslado cancelado")
	return view, nil
}

// Get devuelve el traslado con sus líneas. Basta ser origen o destino.
func (e *Engine) Get(ctx context.Context, transferID string, scope entity.Scope) (*View, error) {
	t, err := e.transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !scope.Allows(t.FromStoreID, t.ToStoreID) {
		return nil, domain.ErrForbidden
	}
	items, err := e.transfers.GetItems(ctx, transferID)
	if err != nil {
		return nil, err
	}
	return &View{Transfer: t, Items: items}, nil
}

// List lista traslados donde la tienda es origen o destino.
func (e *Engine) List(ctx context.Context, storeID string, limit, offset int) ([]*entity.Transfer, error) {
	if storeID == "" {
		return nil, domain.Invalid("tienda obligatoria")
	}
	return e.transfers.ListByStore(ctx, storeID, limit, offset)
}

func lockTransfer(ctx context.Context, r ports.Repos, id string) (*entity.Transfer, []*entity.TransferItem, error) {
	t, err := r.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := r.Transfers.GetItems(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	return t, items, nil
}

// mergeLines suma variantes repetidas conservando el orden y la primera línea de cada una.
func mergeLines(lines []Line) ([]Line, map[string]int, error) {
	if len(lines) == 0 {
		return nil, nil, domain.Invalid("el traslado no tiene líneas")
	}
	first := make(map[string]int)
	idx := make(map[string]int)
	var out []Line
	for i, l := range lines {
		if l.VariantID == "" {
			return nil, nil, domain.InvalidLine(i, "", "variante obligatoria")
		}
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, nil, domain.InvalidLine(i, l.VariantID, "la cantidad debe ser mayor que cero")
		}
		if j, ok := idx[l.VariantID]; ok {
			out[j].Quantity = out[j].Quantity.Add(l.Quantity)
			continue
		}
		first[l.VariantID] = i
		idx[l.VariantID] = len(out)
		out = append(out, l)
	}
	return out, first, nil
}

func keysFor(storeID string, lines []Line) []entity.PositionKey {
	keys := make([]entity.PositionKey, 0, len(lines))
	for _, l := range lines {
		keys = append(keys, entity.PositionKey{StoreID: storeID, VariantID: l.VariantID})
	}
	return keys
}

func itemKeys(storeID string, items []*entity.TransferItem) []entity.PositionKey {
	keys := make([]entity.PositionKey, 0, len(items))
	for _, it := range items {
		keys = append(keys, entity.PositionKey{StoreID: storeID, VariantID: it.VariantID})
	}
	return keys
}

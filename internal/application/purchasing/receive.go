package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/pkg/tracing"
)

// ReceiveLine línea recibida. UnitCost nil conserva el costo actual de la línea de la orden.
type ReceiveLine struct {
	VariantID string
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	LotNumber string
	ExpiresAt *time.Time
}

// ReceiveInput entrada de Receive. Sin líneas se recibe todo lo pendiente.
// ReferenceID es la llave de idempotencia; vacío genera un número RCV-<uuid>.
type ReceiveInput struct {
	OrderID     string
	ReferenceID string
	ActorID     string
	Lines       []ReceiveLine
	Scope       entity.Scope
}

// ReceiveResult recepción registrada. Replayed indica que la referencia ya existía y no se movió stock.
type ReceiveResult struct {
	Order    *entity.PurchaseOrder
	Receipt  *entity.Receipt
	Items    []*entity.ReceiptItem
	Lots     []*entity.StockLot
	Replayed bool
}

type plannedLine struct {
	index    int
	item     *entity.PurchaseItem
	quantity decimal.Decimal
	unitCost decimal.Decimal
	lot      string
	expires  *time.Time
}

// Receive registra mercancía recibida contra la orden: suma existencia, crea lotes y recalcula el total.
// Repetir la misma referencia sobre la misma orden devuelve la recepción original sin efectos.
func (e *Engine) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	if in.OrderID == "" {
		return nil, domain.Invalid("orden obligatoria")
	}
	for i, l := range in.Lines {
		if l.VariantID == "" {
			return nil, domain.InvalidLine(i, "", "variante obligatoria")
		}
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.InvalidLine(i, l.VariantID, "la cantidad recibida debe ser mayor que cero")
		}
		if l.UnitCost != nil && l.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.InvalidLine(i, l.VariantID, "el costo no puede ser negativo")
		}
	}
	ctx, span := tracer.Start(ctx, "purchasing.Receive")

	var res *ReceiveResult
	var lg *ledger.Ledger
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		order, err := r.Purchases.GetOrderForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !in.Scope.Allows(order.StoreID) {
			return domain.ErrForbidden
		}

		if in.ReferenceID != "" {
			existing, err := r.Purchases.GetReceiptByNumber(ctx, in.ReferenceID)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.OrderID != order.ID {
					return domain.NewLineError(domain.ErrReferenceConflict, -1, "", "referencia "+in.ReferenceID)
				}
				items, err := r.Purchases.GetReceiptItems(ctx, existing.ID)
				if err != nil {
					return err
				}
				res = &ReceiveResult{Order: order, Receipt: existing, Items: items, Replayed: true}
				return nil
			}
		}

		if !entity.IsReceivableStatus(order.Status) {
			return domain.NewLineError(domain.ErrNotReceivable, -1, "", "estado "+order.Status)
		}
		items, err := r.Purchases.GetItems(ctx, order.ID)
		if err != nil {
			return err
		}
		plan, err := planReceipt(items, in.Lines)
		if err != nil {
			return err
		}

		now := e.now()
		number := in.ReferenceID
		if number == "" {
			number = "RCV-" + uuid.New().String()
		}
		receipt := &entity.Receipt{
			ID:            uuid.New().String(),
			OrderID:       order.ID,
			StoreID:       order.StoreID,
			ReceiptNumber: number,
			Total:         decimal.Zero,
			ReceivedBy:    in.ActorID,
			ReceivedAt:    now,
		}
		for _, pl := range plan {
			receipt.Total = receipt.Total.Add(pl.quantity.Mul(pl.unitCost))
		}
		if err := r.Purchases.CreateReceipt(ctx, receipt); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.NewLineError(domain.ErrReferenceConflict, -1, "", "referencia "+number)
			}
			return err
		}
		res = &ReceiveResult{Order: order, Receipt: receipt}

		lg = ledger.New(r.Stock, r.Movements)
		keys := make([]entity.PositionKey, 0, len(plan))
		for _, pl := range plan {
			keys = append(keys, entity.PositionKey{StoreID: order.StoreID, VariantID: pl.item.VariantID})
		}
		if err := lg.EnsureAll(ctx, keys); err != nil {
			return err
		}

		for _, pl := range plan {
			cost := pl.unitCost
			pl.item.ReceivedQuantity = pl.item.ReceivedQuantity.Add(pl.quantity)
			pl.item.UnitCost = cost
			if err := r.Purchases.UpdateItem(ctx, pl.item); err != nil {
				return err
			}
			if err := lg.Increment(ctx, ledger.Entry{
				StoreID:      order.StoreID,
				VariantID:    pl.item.VariantID,
				Quantity:     pl.quantity,
				MovementType: entity.MovementTypeReceive,
				ReferenceID:  receipt.ID,
				Reason:       "recepción " + number,
				ActorID:      in.ActorID,
				UnitCost:     &cost,
			}); err != nil {
				return domain.AtLine(err, pl.index)
			}
			lot := &entity.StockLot{
				ID:        uuid.New().String(),
				StoreID:   order.StoreID,
				VariantID: pl.item.VariantID,
				ReceiptID: receipt.ID,
				LotNumber: pl.lot,
				ExpiresAt: pl.expires,
				Quantity:  pl.quantity,
				UnitCost:  cost,
				CreatedAt: now,
			}
			if err := r.Purchases.CreateLot(ctx, lot); err != nil {
				return err
			}
			ri := &entity.ReceiptItem{
				ID:             uuid.New().String(),
				ReceiptID:      receipt.ID,
				PurchaseItemID: pl.item.ID,
				VariantID:      pl.item.VariantID,
				LotID:          lot.ID,
				Quantity:       pl.quantity,
				UnitCost:       cost,
				LineTotal:      pl.quantity.Mul(cost),
			}
			if err := r.Purchases.CreateReceiptItem(ctx, ri); err != nil {
				return err
			}
			res.Lots = append(res.Lots, lot)
			res.Items = append(res.Items, ri)
		}

		total := decimal.Zero
		complete := true
		for _, it := range items {
			total = total.Add(it.Quantity.Mul(it.UnitCost))
			if it.Remaining().GreaterThan(decimal.Zero) {
				complete = false
			}
		}
		order.Total = total
		if complete {
			order.Status = entity.PurchaseStatusReceived
		}
		order.UpdatedAt = now
		return r.Purchases.UpdateOrder(ctx, order)
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	if res.Replayed {
		e.log.Info().Str("order_id", in.OrderID).Str("receipt_number", res.Receipt.ReceiptNumber).Msg("recepción repetida, sin cambios")
		return res, nil
	}
	ledger.Publish(ctx, e.publisher, e.log, lg.Movements())
	e.log.Info().Str("order_id", res.Order.ID).Str("receipt_id", res.Receipt.ID).
		Str("status", res.Order.Status).Int("lines", len(res.Items)).Msg("mercancía recibida")
	return res, nil
}

// planReceipt valida las líneas contra la orden. Sin líneas toma todo lo pendiente al costo vigente.
func planReceipt(items []*entity.PurchaseItem, lines []ReceiveLine) ([]plannedLine, error) {
	if len(lines) == 0 {
		var plan []plannedLine
		for i, it := range items {
			if rem := it.Remaining(); rem.GreaterThan(decimal.Zero) {
				plan = append(plan, plannedLine{index: i, item: it, quantity: rem, unitCost: it.UnitCost})
			}
		}
		if len(plan) == 0 {
			return nil, domain.Invalid("la orden no tiene cantidades pendientes")
		}
		return plan, nil
	}

	byVariant := make(map[string]*entity.PurchaseItem, len(items))
	for _, it := range items {
		byVariant[it.VariantID] = it
	}
	requested := make(map[string]decimal.Decimal)
	plan := make([]plannedLine, 0, len(lines))
	for i, l := range lines {
		it, ok := byVariant[l.VariantID]
		if !ok {
			return nil, domain.InvalidLine(i, l.VariantID, "la variante no pertenece a la orden")
		}
		requested[it.ID] = requested[it.ID].Add(l.Quantity)
		if requested[it.ID].GreaterThan(it.Remaining()) {
			return nil, domain.InvalidLine(i, l.VariantID,
				fmt.Sprintf("sobre-recepción: pendiente %s, recibido %s", it.Remaining(), requested[it.ID]))
		}
		cost := it.UnitCost
		if l.UnitCost != nil {
			cost = *l.UnitCost
		}
		plan = append(plan, plannedLine{
			index:    i,
			item:     it,
			quantity: l.Quantity,
			unitCost: cost,
			lot:      l.LotNumber,
			expires:  l.ExpiresAt,
		})
	}
	return plan, nil
}

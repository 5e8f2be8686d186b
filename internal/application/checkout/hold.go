package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/pkg/tracing"
)

// ResumeInput entrada para reanudar un carrito en espera.
type ResumeInput struct {
	InvoiceID     string
	PaymentMethod string
	CashierID     string
	Scope         entity.Scope
}

// Resume convierte la reserva de un carrito en espera en una venta.
// La validación descuenta la propia reserva del carrito: quantity - (reserved - held) >= held.
func (e *Engine) Resume(ctx context.Context, in ResumeInput) (*Result, error) {
	if in.InvoiceID == "" {
		return nil, domain.Invalid("factura obligatoria")
	}
	if !entity.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.Invalid("método de pago inválido")
	}
	ctx, span := tracer.Start(ctx, "checkout.Resume")

	var res *Result
	var lg *ledger.Ledger
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		inv, err := r.Invoices.GetForUpdate(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if !in.Scope.Allows(inv.StoreID) {
			return domain.ErrForbidden
		}
		if !inv.IsHeld() {
			return domain.ErrAlreadyCheckedOut
		}
		shift, err := r.Shifts.GetOpenByStore(ctx, inv.StoreID)
		if err != nil {
			return err
		}
		if shift == nil {
			return domain.ErrShiftRequired
		}
		items, err := r.Invoices.GetItems(ctx, inv.ID)
		if err != nil {
			return err
		}

		lg = ledger.New(r.Stock, r.Movements)
		held, order, first := heldByVariant(items)
		keys := make([]entity.PositionKey, 0, len(order))
		for _, variantID := range order {
			keys = append(keys, entity.PositionKey{StoreID: inv.StoreID, VariantID: variantID})
		}
		if err := lg.LockAll(ctx, keys); err != nil {
			return err
		}
		for _, variantID := range order {
			qty := held[variantID]
			pos, err := lg.Position(ctx, inv.StoreID, variantID)
			if err != nil {
				return err
			}
			if pos == nil {
				return domain.NewLineError(domain.ErrPositionNotFound, first[variantID], variantID, "tienda "+inv.StoreID)
			}
			if pos.Reserved.LessThan(qty) {
				return domain.NewLineError(domain.ErrInsufficientStock, first[variantID], variantID,
					fmt.Sprintf("la reserva del carrito (%s) ya no está apartada (reservado %s)", qty, pos.Reserved))
			}
			availableForCart := pos.Quantity.Sub(pos.Reserved.Sub(qty))
			if availableForCart.LessThan(qty) {
				return domain.NewLineError(domain.ErrInsufficientStock, first[variantID], variantID,
					fmt.Sprintf("disponible %s, solicitado %s", availableForCart, qty))
			}
		}

		for i, item := range items {
			if err := lg.Release(ctx, inv.StoreID, item.VariantID, item.Quantity); err != nil {
				return domain.AtLine(err, i)
			}
			if err := lg.Decrement(ctx, ledger.Entry{
				StoreID:      inv.StoreID,
				VariantID:    item.VariantID,
				Quantity:     item.Quantity,
				MovementType: entity.MovementTypeSale,
				ReferenceID:  inv.ID,
				Reason:       "venta de carrito en espera",
				ActorID:      in.CashierID,
			}); err != nil {
				return domain.AtLine(err, i)
			}
		}

		now := e.now()
		pm := in.PaymentMethod
		inv.PaymentMethod = &pm
		inv.Status = entity.InvoiceStatusCompleted
		inv.CompletedAt = &now
		inv.ShiftID = shift.ID
		if in.CashierID != "" {
			inv.CashierID = in.CashierID
		}
		inv.UpdatedAt = now
		if err := r.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		res = &Result{Invoice: inv, Items: items}
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	ledger.Publish(ctx, e.publisher, e.log, lg.Movements())
	e.log.Store(res.Invoice.StoreID).Document("invoice", res.Invoice.ID).Info().Msg("carrito en espera cobrado")
	return res, nil
}

// CancelHeld descarta un carrito en espera y libera su reserva. No mueve existencia.
func (e *Engine) CancelHeld(ctx context.Context, invoiceID string, scope entity.Scope) (*Result, error) {
	var res *Result
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		inv, err := r.Invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if !scope.Allows(inv.StoreID) {
			return domain.ErrForbidden
		}
		if !inv.IsHeld() {
			return domain.ErrAlreadyCheckedOut
		}
		items, err := r.Invoices.GetItems(ctx, inv.ID)
		if err != nil {
			return err
		}
		lg := ledger.New(r.Stock, r.Movements)
		_, order, _ := heldByVariant(items)
		keys := make([]entity.PositionKey, 0, len(order))
		for _, variantID := range order {
			keys = append(keys, entity.PositionKey{StoreID: inv.StoreID, VariantID: variantID})
		}
		if err := lg.LockAll(ctx, keys); err != nil {
			return err
		}
		for i, item := range items {
			if err := lg.Release(ctx, inv.StoreID, item.VariantID, item.Quantity); err != nil {
				return domain.AtLine(err, i)
			}
		}
		inv.Status = entity.InvoiceStatusCancelled
		inv.UpdatedAt = e.now()
		if err := r.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		res = &Result{Invoice: inv, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Document("invoice", invoiceID).Info().Msg("carrito en espera descartado")
	return res, nil
}

// ListHeld lista los carritos en espera de una tienda.
func (e *Engine) ListHeld(ctx context.Context, storeID string) ([]*entity.Invoice, error) {
	return e.invoices.ListHeldByStore(ctx, storeID)
}

func heldByVariant(items []*entity.InvoiceItem) (map[string]decimal.Decimal, []string, map[string]int) {
	held := make(map[string]decimal.Decimal)
	first := make(map[string]int)
	var order []string
	for i, it := range items {
		if _, ok := held[it.VariantID]; !ok {
			held[it.VariantID] = decimal.Zero
			first[it.VariantID] = i
			order = append(order, it.VariantID)
		}
		held[it.VariantID] = held[it.VariantID].Add(it.Quantity)
	}
	return held, order, first
}

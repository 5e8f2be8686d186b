// Package returns registra devoluciones parciales y reembolsos totales de ventas cobradas.
package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/application/shift"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
	"github.com/jhoicas/retail-ledger-api/pkg/tracing"
)

var tracer = tracing.Tracer("returns")

// DefaultApprovalThreshold reembolsos por encima de este monto requieren rol de gerente.
var DefaultApprovalThreshold = decimal.NewFromInt(500000)

// Line línea a devolver.
type Line struct {
	InvoiceItemID string
	Quantity      decimal.Decimal
}

// Input entrada de devolución parcial.
type Input struct {
	InvoiceID    string
	Lines        []Line
	RefundMethod string
	Restock      bool
	Reason       string
	ActorID      string
	ActorRole    string
	Scope        entity.Scope
}

// RefundInput entrada de reembolso total: devuelve todo lo pendiente de cada línea.
type RefundInput struct {
	InvoiceID    string
	RefundMethod string
	Restock      bool
	Reason       string
	ActorID      string
	ActorRole    string
	Scope        entity.Scope
}

// Result devolución creada con sus líneas y, si hubo salida de efectivo, el movimiento de caja.
type Result struct {
	Return       *entity.Return
	Items        []*entity.ReturnItem
	CashMovement *entity.CashMovement
}

// Engine motor de devoluciones.
type Engine struct {
	tx        ports.TxRunner
	returns   repository.ReturnRepository
	threshold decimal.Decimal
	publisher ports.MovementPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewEngine construye el motor. returns es de lectura (pool). threshold cero usa DefaultApprovalThreshold.
func NewEngine(tx ports.TxRunner, returns repository.ReturnRepository, threshold decimal.Decimal, publisher ports.MovementPublisher, log *logger.Logger) *Engine {
	if !threshold.GreaterThan(decimal.Zero) {
		threshold = DefaultApprovalThreshold
	}
	if publisher == nil {
		publisher = ports.NoopPublisher{}
	}
	return &Engine{tx: tx, returns: returns, threshold: threshold, publisher: publisher, log: log, now: time.Now}
}

// Create registra una devolución parcial. Los controles de cantidad devolvible y la creación
// ocurren en la misma transacción, con la factura bloqueada.
func (e *Engine) Create(ctx context.Context, in Input) (*Result, error) {
	if in.InvoiceID == "" || len(in.Lines) == 0 {
		return nil, domain.Invalid("factura y líneas son obligatorias")
	}
	for i, l := range in.Lines {
		if l.InvoiceItemID == "" {
			return nil, domain.InvalidLine(i, "", "línea de factura obligatoria")
		}
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.InvalidLine(i, "", "la cantidad debe ser mayor que cero")
		}
	}
	return e.run(ctx, request{
		invoiceID:    in.InvoiceID,
		lines:        in.Lines,
		refundMethod: in.RefundMethod,
		restock:      in.Restock,
		reason:       in.Reason,
		actorID:      in.ActorID,
		actorRole:    in.ActorRole,
		scope:        in.Scope,
		movementType: entity.MovementTypeReturn,
	})
}

// RefundInvoice devuelve el saldo completo de la factura. Falla con ErrOverReturn si no queda nada por devolver.
func (e *Engine) RefundInvoice(ctx context.Context, in RefundInput) (*Result, error) {
	if in.InvoiceID == "" {
		return nil, domain.Invalid("factura obligatoria")
	}
	return e.run(ctx, request{
		invoiceID:    in.InvoiceID,
		all:          true,
		refundMethod: in.RefundMethod,
		restock:      in.Restock,
		reason:       in.Reason,
		actorID:      in.ActorID,
		actorRole:    in.ActorRole,
		scope:        in.Scope,
		movementType: entity.MovementTypeRefund,
	})
}

type request struct {
	invoiceID    string
	lines        []Line
	all          bool
	refundMethod string
	restock      bool
	reason       string
	actorID      string
	actorRole    string
	scope        entity.Scope
	movementType string
}

func (e *Engine) run(ctx context.Context, req request) (*Result, error) {
	if !entity.IsValidPaymentMethod(req.refundMethod) {
		return nil, domain.Invalid("método de reembolso inválido")
	}
	ctx, span := tracer.Start(ctx, "returns."+req.movementType)

	var res *Result
	var lg *ledger.Ledger
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		inv, err := r.Invoices.GetForUpdate(ctx, req.invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if !req.scope.Allows(inv.StoreID) {
			return domain.ErrForbidden
		}
		if inv.Status != entity.InvoiceStatusCompleted {
			return domain.Invalid("solo se pueden devolver ventas cobradas")
		}
		items, err := r.Invoices.GetItems(ctx, inv.ID)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.InvoiceItem, len(items))
		remaining := make(map[string]decimal.Decimal, len(items))
		for _, it := range items {
			byID[it.ID] = it
			returned, err := r.Returns.ReturnedQuantity(ctx, it.ID)
			if err != nil {
				return err
			}
			remaining[it.ID] = it.Quantity.Sub(returned)
		}

		lines := req.lines
		if req.all {
			lines = nil
			for _, it := range items {
				if rem := remaining[it.ID]; rem.GreaterThan(decimal.Zero) {
					lines = append(lines, Line{InvoiceItemID: it.ID, Quantity: rem})
				}
			}
			if len(lines) == 0 {
				return domain.NewLineError(domain.ErrOverReturn, -1, "", "la factura ya fue devuelta por completo")
			}
		}

		// Validación completa antes de mutar.
		requested := make(map[string]decimal.Decimal)
		total := decimal.Zero
		for i, l := range lines {
			it, ok := byID[l.InvoiceItemID]
			if !ok {
				return domain.InvalidLine(i, "", "la línea no pertenece a la factura")
			}
			requested[it.ID] = requested[it.ID].Add(l.Quantity)
			if requested[it.ID].GreaterThan(remaining[it.ID]) {
				return domain.NewLineError(domain.ErrOverReturn, i, it.VariantID,
					fmt.Sprintf("devolvible %s, solicitado %s", remaining[it.ID], requested[it.ID]))
			}
			total = total.Add(it.UnitPrice.Mul(l.Quantity))
		}
		approvedBy := ""
		if total.GreaterThan(e.threshold) {
			if !entity.IsApproverRole(req.actorRole) {
				return domain.NewLineError(domain.ErrApprovalRequired, -1, "",
					fmt.Sprintf("reembolso %s supera el umbral %s", total, e.threshold))
			}
			approvedBy = req.actorID
		}

		now := e.now()
		ret := &entity.Return{
			ID:           uuid.New().String(),
			InvoiceID:    inv.ID,
			StoreID:      inv.StoreID,
			RefundMethod: req.refundMethod,
			Restock:      req.restock,
			TotalRefund:  total,
			Status:       entity.ReturnStatusCompleted,
			Reason:       req.reason,
			CreatedBy:    req.actorID,
			ApprovedBy:   approvedBy,
			CreatedAt:    now,
		}
		if err := r.Returns.Create(ctx, ret); err != nil {
			return err
		}
		res = &Result{Return: ret}

		lg = ledger.New(r.Stock, r.Movements)
		if req.restock {
			keys := make([]entity.PositionKey, 0, len(lines))
			for _, l := range lines {
				keys = append(keys, entity.PositionKey{StoreID: inv.StoreID, VariantID: byID[l.InvoiceItemID].VariantID})
			}
			if err := lg.EnsureAll(ctx, keys); err != nil {
				return err
			}
		}
		for i, l := range lines {
			it := byID[l.InvoiceItemID]
			ri := &entity.ReturnItem{
				ID:            uuid.New().String(),
				ReturnID:      ret.ID,
				InvoiceItemID: it.ID,
				VariantID:     it.VariantID,
				Quantity:      l.Quantity,
				UnitPrice:     it.UnitPrice,
				RefundAmount:  it.UnitPrice.Mul(l.Quantity),
			}
			if err := r.Returns.CreateItem(ctx, ri); err != nil {
				return err
			}
			res.Items = append(res.Items, ri)
			if !req.restock {
				continue
			}
			cost := it.UnitCost
			if err := lg.Increment(ctx, ledger.Entry{
				StoreID:      inv.StoreID,
				VariantID:    it.VariantID,
				Quantity:     l.Quantity,
				MovementType: req.movementType,
				ReferenceID:  ret.ID,
				Reason:       req.reason,
				ActorID:      req.actorID,
				UnitCost:     &cost,
			}); err != nil {
				return domain.AtLine(err, i)
			}
		}

		if req.refundMethod == entity.PaymentMethodCash {
			cm, err := shift.RecordCashMovement(ctx, r.Shifts, inv.StoreID, shift.CashMovementInput{
				Type:        entity.CashMovementRefundOut,
				Amount:      total.Neg(),
				ReferenceID: ret.ID,
				Reason:      "reembolso en efectivo",
				ActorID:     req.actorID,
				At:          now,
			})
			if err != nil {
				return err
			}
			res.CashMovement = cm
		}
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	ledger.Publish(ctx, e.publisher, e.log, lg.Movements())
	ev := e.log.Info().Str("return_id", res.Return.ID).Str("invoice_id", res.Return.InvoiceID).
		Str("total_refund", res.Return.TotalRefund.String()).Bool("restock", res.Return.Restock)
	if res.Return.RefundMethod == entity.PaymentMethodCash && res.CashMovement == nil {
		ev = ev.Bool("cash_unrecorded", true)
	}
	ev.Msg("devolución registrada")
	return res, nil
}

// ListByInvoice lista las devoluciones de una factura con sus líneas.
func (e *Engine) ListByInvoice(ctx context.Context, invoiceID string, scope entity.Scope) ([]*Result, error) {
	rets, err := e.returns.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]*Result, 0, len(rets))
	for _, ret := range rets {
		if !scope.Allows(ret.StoreID) {
			return nil, domain.ErrForbidden
		}
		items, err := e.returns.GetItems(ctx, ret.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &Result{Return: ret, Items: items})
	}
	return out, nil
}

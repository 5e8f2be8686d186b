// Package checkout convierte carritos en ventas: cobro inmediato, carritos en espera
// (reserva sin descontar existencia), reanudación y descarte.
package checkout

import (
	"context"
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

var tracer = tracing.Tracer("checkout")

// Line línea solicitada del carrito.
type Line struct {
	VariantID string
	Quantity  decimal.Decimal
}

// CartInput entrada para Checkout y Hold. PaymentMethod se ignora en Hold.
type CartInput struct {
	StoreID       string
	CashierID     string
	CustomerID    string
	PaymentMethod string
	Lines         []Line
	Discount      decimal.Decimal
	Tax           decimal.Decimal
}

// Result factura con sus líneas.
type Result struct {
	Invoice *entity.Invoice
	Items   []*entity.InvoiceItem
}

// Engine motor de caja.
type Engine struct {
	tx        ports.TxRunner
	variants  repository.VariantRepository
	invoices  repository.InvoiceRepository
	prices    PriceResolver
	publisher ports.MovementPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewEngine construye el motor. variants e invoices son de lectura (pool).
func NewEngine(
	tx ports.TxRunner,
	variants repository.VariantRepository,
	invoices repository.InvoiceRepository,
	prices PriceResolver,
	publisher ports.MovementPublisher,
	log *logger.Logger,
) *Engine {
	if publisher == nil {
		publisher = ports.NoopPublisher{}
	}
	return &Engine{
		tx:        tx,
		variants:  variants,
		invoices:  invoices,
		prices:    prices,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

type pricedLine struct {
	index     int
	variantID string
	quantity  decimal.Decimal
	unitPrice decimal.Decimal
	lineTotal decimal.Decimal
}

type pricedCart struct {
	lines    []pricedLine
	subtotal decimal.Decimal
	total    decimal.Decimal
	// demand suma cantidades por variante; firstLine guarda la primera línea de cada una.
	demand    map[string]decimal.Decimal
	firstLine map[string]int
	order     []string
}

// Checkout valida disponibilidad, congela precios y costo, crea la factura cobrada y descuenta stock.
// Si cualquier línea falla no se aplica ninguna.
func (e *Engine) Checkout(ctx context.Context, in CartInput) (*Result, error) {
	if !entity.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.Invalid("método de pago inválido")
	}
	return e.place(ctx, in, false)
}

// Hold aparta el stock del carrito sin descontar existencia y guarda la factura sin método de pago.
func (e *Engine) Hold(ctx context.Context, in CartInput) (*Result, error) {
	in.PaymentMethod = ""
	return e.place(ctx, in, true)
}

func (e *Engine) place(ctx context.Context, in CartInput, hold bool) (*Result, error) {
	op := "checkout.Checkout"
	if hold {
		op = "checkout.Hold"
	}
	ctx, span := tracer.Start(ctx, op)
	res, movements, err := e.placeTx(ctx, in, hold)
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	ledger.Publish(ctx, e.publisher, e.log, movements)
	e.log.Info().Str("invoice_id", res.Invoice.ID).Str("store_id", in.StoreID).
		Str("status", res.Invoice.Status).Str("total", res.Invoice.Total.String()).
		Int("lines", len(res.Items)).Msg("carrito registrado")
	return res, nil
}

func (e *Engine) placeTx(ctx context.Context, in CartInput, hold bool) (*Result, []*entity.StockMovement, error) {
	cart, err := e.price(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	now := e.now()
	invoiceID := uuid.New().String()
	var res *Result
	var lg *ledger.Ledger

	err = e.tx.Run(ctx, func(r ports.Repos) error {
		shift, err := r.Shifts.GetOpenByStore(ctx, in.StoreID)
		if err != nil {
			return err
		}
		if shift == nil {
			return domain.ErrShiftRequired
		}

		lg = ledger.New(r.Stock, r.Movements)
		keys := make([]entity.PositionKey, 0, len(cart.order))
		for _, variantID := range cart.order {
			keys = append(keys, entity.PositionKey{StoreID: in.StoreID, VariantID: variantID})
		}
		if err := lg.LockAll(ctx, keys); err != nil {
			return err
		}
		for _, variantID := range cart.order {
			if err := lg.CheckAvailable(ctx, in.StoreID, variantID, cart.demand[variantID]); err != nil {
				return domain.AtLine(err, cart.firstLine[variantID])
			}
		}

		inv := &entity.Invoice{
			ID:         invoiceID,
			StoreID:    in.StoreID,
			CashierID:  in.CashierID,
			ShiftID:    shift.ID,
			CustomerID: in.CustomerID,
			Status:     entity.InvoiceStatusCompleted,
			Subtotal:   cart.subtotal,
			TaxTotal:   in.Tax,
			Discount:   in.Discount,
			Total:      cart.total,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if hold {
			inv.Status = entity.InvoiceStatusHeld
		} else {
			pm := in.PaymentMethod
			inv.PaymentMethod = &pm
			inv.CompletedAt = &now
		}
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}

		res = &Result{Invoice: inv}
		for _, pl := range cart.lines {
			pos, err := lg.Position(ctx, in.StoreID, pl.variantID)
			if err != nil {
				return err
			}
			unitCost := decimal.Zero
			if pos != nil {
				unitCost = pos.LastCost
			}
			item := &entity.InvoiceItem{
				ID:        uuid.New().String(),
				InvoiceID: inv.ID,
				VariantID: pl.variantID,
				Quantity:  pl.quantity,
				UnitPrice: pl.unitPrice,
				UnitCost:  unitCost,
				LineTotal: pl.lineTotal,
			}
			if err := r.Invoices.CreateItem(ctx, item); err != nil {
				return err
			}
			if hold {
				err = lg.Reserve(ctx, in.StoreID, pl.variantID, pl.quantity)
			} else {
				err = lg.Decrement(ctx, ledger.Entry{
					StoreID:      in.StoreID,
					VariantID:    pl.variantID,
					Quantity:     pl.quantity,
					MovementType: entity.MovementTypeSale,
					ReferenceID:  inv.ID,
					Reason:       "venta",
					ActorID:      in.CashierID,
				})
			}
			if err != nil {
				return domain.AtLine(err, pl.index)
			}
			res.Items = append(res.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return res, lg.Movements(), nil
}

// price valida la entrada y resuelve precios fuera de la transacción (solo lectura).
func (e *Engine) price(ctx context.Context, in CartInput) (*pricedCart, error) {
	if in.StoreID == "" || in.CashierID == "" {
		return nil, domain.Invalid("tienda y cajero son obligatorios")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("el carrito no tiene líneas")
	}
	if in.Discount.LessThan(decimal.Zero) || in.Tax.LessThan(decimal.Zero) {
		return nil, domain.Invalid("descuento e impuesto no pueden ser negativos")
	}

	at := e.now()
	cart := &pricedCart{
		subtotal:  decimal.Zero,
		demand:    make(map[string]decimal.Decimal),
		firstLine: make(map[string]int),
	}
	variants := make(map[string]*entity.Variant)
	for i, l := range in.Lines {
		if l.VariantID == "" {
			return nil, domain.InvalidLine(i, "", "variante obligatoria")
		}
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.InvalidLine(i, l.VariantID, "la cantidad debe ser mayor que cero")
		}
		v, ok := variants[l.VariantID]
		if !ok {
			var err error
			v, err = e.variants.GetByID(ctx, l.VariantID)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, domain.InvalidLine(i, l.VariantID, "variante inexistente")
			}
			variants[l.VariantID] = v
		}
		price, err := e.prices.ResolveFor(ctx, in.StoreID, v, at)
		if err != nil {
			return nil, domain.AtLine(err, i)
		}
		lineTotal := price.Mul(l.Quantity)
		cart.lines = append(cart.lines, pricedLine{
			index:     i,
			variantID: l.VariantID,
			quantity:  l.Quantity,
			unitPrice: price,
			lineTotal: lineTotal,
		})
		cart.subtotal = cart.subtotal.Add(lineTotal)
		if _, seen := cart.demand[l.VariantID]; !seen {
			cart.firstLine[l.VariantID] = i
			cart.order = append(cart.order, l.VariantID)
			cart.demand[l.VariantID] = decimal.Zero
		}
		cart.demand[l.VariantID] = cart.demand[l.VariantID].Add(l.Quantity)
	}
	cart.total = cart.subtotal.Add(in.Tax).Sub(in.Discount)
	if cart.total.LessThan(decimal.Zero) {
		return nil, domain.Invalid("el descuento supera el total")
	}
	return cart, nil
}

// GetInvoice devuelve una factura con sus líneas. Otra tienda fuera del alcance da ErrForbidden.
func (e *Engine) GetInvoice(ctx context.Context, id string, scope entity.Scope) (*Result, error) {
	inv, err := e.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if !scope.Allows(inv.StoreID) {
		return nil, domain.ErrForbidden
	}
	items, err := e.invoices.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Result{Invoice: inv, Items: items}, nil
}

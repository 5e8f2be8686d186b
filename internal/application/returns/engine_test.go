package returns_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/checkout"
	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/application/pricing"
	"github.com/jhoicas/retail-ledger-api/internal/application/returns"
	"github.com/jhoicas/retail-ledger-api/internal/application/shift"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	st      *memory.Store
	sales   *checkout.Engine
	engine  *returns.Engine
	shifts  *shift.Service
	ledger  *ledger.Service
	shiftID string
}

// newFixture arma una tienda con turno abierto, "cheap" a 1000 y "tv" a 300000, 10 unidades de cada una.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	repos := st.Repos()
	ctx := t.Context()
	now := time.Now()
	require.NoError(t, repos.Stores.Create(ctx, &entity.Store{ID: "s1", Code: "S1", Name: "Centro", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Variants.Create(ctx, &entity.Variant{ID: "cheap", SKU: "C", Name: "Medias", BasePrice: d(1000), Status: "active", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Variants.Create(ctx, &entity.Variant{ID: "tv", SKU: "TV", Name: "Televisor", BasePrice: d(300000), Status: "active", CreatedAt: now, UpdatedAt: now}))

	log := logger.Nop()
	prices := pricing.NewResolver(st, repos.Prices, repos.Variants, ports.NoopPriceCache{}, time.Minute, log)
	f := &fixture{
		st:     st,
		sales:  checkout.NewEngine(st, repos.Variants, repos.Invoices, prices, nil, log),
		engine: returns.NewEngine(st, repos.Returns, d(500000), nil, log),
		shifts: shift.NewService(st, repos.Shifts, log),
		ledger: ledger.NewService(st, repos.Stock, repos.Movements, log),
	}
	sh, err := f.shifts.Open(ctx, shift.OpenInput{StoreID: "s1", CashierID: "c1", OpeningCash: d(100000)})
	require.NoError(t, err)
	f.shiftID = sh.ID

	cost := d(400)
	require.NoError(t, st.Run(ctx, func(r ports.Repos) error {
		lg := ledger.New(r.Stock, r.Movements)
		for _, v := range []string{"cheap", "tv"} {
			if err := lg.Increment(ctx, ledger.Entry{StoreID: "s1", VariantID: v, Quantity: d(10), MovementType: entity.MovementTypeReceive, ReferenceID: "seed", UnitCost: &cost}); err != nil {
				return err
			}
		}
		return nil
	}))
	return f
}

func (f *fixture) sell(t *testing.T, lines ...checkout.Line) *checkout.Result {
	t.Helper()
	res, err := f.sales.Checkout(t.Context(), checkout.CartInput{StoreID: "s1", CashierID: "c1", PaymentMethod: entity.PaymentMethodCash, Lines: lines})
	require.NoError(t, err)
	return res
}

func (f *fixture) quantity(t *testing.T, variantID string) decimal.Decimal {
	t.Helper()
	p, err := f.ledger.GetPosition(t.Context(), "s1", variantID)
	require.NoError(t, err)
	return p.Quantity
}

func partial(invoiceID, role string, restock bool, lines ...returns.Line) returns.Input {
	return returns.Input{InvoiceID: invoiceID, Lines: lines, RefundMethod: entity.PaymentMethodCard, Restock: restock, ActorID: "u-" + role, ActorRole: role}
}

func TestCreate_PartialWithRestock(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(3)})
	item := sale.Items[0]

	res, err := f.engine.Create(t.Context(), partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: item.ID, Quantity: d(2)}))
	require.NoError(t, err)
	assert.Equal(t, "2000", res.Return.TotalRefund.String())
	require.Len(t, res.Items, 1)
	assert.Equal(t, "2000", res.Items[0].RefundAmount.String())
	assert.Empty(t, res.Return.ApprovedBy)
	assert.True(t, f.quantity(t, "cheap").Equal(d(9)))

	movs, err := f.ledger.ListByReference(t.Context(), res.Return.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeReturn, movs[0].MovementType)
	assert.True(t, movs[0].UnitCost.Equal(d(400)), "reingresa al costo de la venta")

	rec, err := f.ledger.Reconcile(t.Context(), "s1", "cheap")
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
}

func TestCreate_WithoutRestockKeepsStock(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(1)})

	_, err := f.engine.Create(t.Context(), partial(sale.Invoice.ID, entity.RoleCashier, false, returns.Line{InvoiceItemID: sale.Items[0].ID, Quantity: d(1)}))
	require.NoError(t, err)
	assert.True(t, f.quantity(t, "cheap").Equal(d(9)))
}

func TestCreate_OverReturn(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(2)})
	item := sale.Items[0]
	ctx := t.Context()

	_, err := f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: item.ID, Quantity: d(3)}))
	assert.True(t, errors.Is(err, domain.ErrOverReturn))

	_, err = f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true,
		returns.Line{InvoiceItemID: item.ID, Quantity: d(1)},
		returns.Line{InvoiceItemID: item.ID, Quantity: d(2)},
	))
	require.True(t, errors.Is(err, domain.ErrOverReturn), "las líneas repetidas se suman")
	var le *domain.LineError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 1, le.Line)
	assert.Equal(t, "cheap", le.VariantID)

	_, err = f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: item.ID, Quantity: d(2)}))
	require.NoError(t, err)
	_, err = f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: item.ID, Quantity: d(1)}))
	assert.True(t, errors.Is(err, domain.ErrOverReturn))
	assert.True(t, f.quantity(t, "cheap").Equal(d(10)))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(1)})
	ctx := t.Context()

	_, err := f.engine.Create(ctx, returns.Input{InvoiceID: sale.Invoice.ID})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: "other", Quantity: d(1)}))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: sale.Items[0].ID, Quantity: d(0)}))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	bad := partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: sale.Items[0].ID, Quantity: d(1)})
	bad.RefundMethod = "cheque"
	_, err = f.engine.Create(ctx, bad)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	held, err := f.sales.Hold(ctx, checkout.CartInput{StoreID: "s1", CashierID: "c1", Lines: []checkout.Line{{VariantID: "cheap", Quantity: d(1)}}})
	require.NoError(t, err)
	_, err = f.engine.Create(ctx, partial(held.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: held.Items[0].ID, Quantity: d(1)}))
	assert.True(t, errors.Is(err, domain.ErrValidation), "un carrito en espera no se devuelve")

	_, err = f.engine.Create(ctx, partial("missing", entity.RoleCashier, true, returns.Line{InvoiceItemID: "x", Quantity: d(1)}))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreate_ApprovalThreshold(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "tv", Quantity: d(2)})
	item := sale.Items[0]
	ctx := t.Context()

	_, err := f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: item.ID, Quantity: d(2)}))
	assert.True(t, errors.Is(err, domain.ErrApprovalRequired))
	assert.True(t, f.quantity(t, "tv").Equal(d(8)), "rechazo sin efectos")

	res, err := f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: item.ID, Quantity: d(1)}))
	require.NoError(t, err, "300000 no supera el umbral")
	assert.Empty(t, res.Return.ApprovedBy)

	sale2 := f.sell(t, checkout.Line{VariantID: "tv", Quantity: d(2)})
	res, err = f.engine.Create(ctx, partial(sale2.Invoice.ID, entity.RoleStoreManager, true, returns.Line{InvoiceItemID: sale2.Items[0].ID, Quantity: d(2)}))
	require.NoError(t, err)
	assert.Equal(t, "600000", res.Return.TotalRefund.String())
	assert.Equal(t, "u-"+entity.RoleStoreManager, res.Return.ApprovedBy)
}

func TestCreate_ConcurrentReturnsRespectBound(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(3)})
	item := sale.Items[0]

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Create(context.Background(), partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: item.ID, Quantity: d(1)}))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrOverReturn), "error inesperado: %v", err)
	}
	assert.Equal(t, 3, ok)
	assert.True(t, f.quantity(t, "cheap").Equal(d(10)))

	list, err := f.engine.ListByInvoice(t.Context(), sale.Invoice.ID, entity.Scope{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRefundInvoice(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(3)}, checkout.Line{VariantID: "tv", Quantity: d(1)})
	ctx := t.Context()

	_, err := f.engine.Create(ctx, partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: sale.Items[0].ID, Quantity: d(1)}))
	require.NoError(t, err)

	res, err := f.engine.RefundInvoice(ctx, returns.RefundInput{InvoiceID: sale.Invoice.ID, RefundMethod: entity.PaymentMethodCard, Restock: true, ActorID: "c1", ActorRole: entity.RoleCashier})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "302000", res.Return.TotalRefund.String())
	assert.True(t, f.quantity(t, "cheap").Equal(d(10)))
	assert.True(t, f.quantity(t, "tv").Equal(d(10)))

	movs, err := f.ledger.ListByReference(ctx, res.Return.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeRefund, m.MovementType)
	}

	_, err = f.engine.RefundInvoice(ctx, returns.RefundInput{InvoiceID: sale.Invoice.ID, RefundMethod: entity.PaymentMethodCard, ActorRole: entity.RoleCashier})
	assert.True(t, errors.Is(err, domain.ErrOverReturn))
}

func TestCashRefund_RecordsCashMovement(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(2)})
	ctx := t.Context()

	in := partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: sale.Items[0].ID, Quantity: d(2)})
	in.RefundMethod = entity.PaymentMethodCash
	res, err := f.engine.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, res.CashMovement)
	assert.Equal(t, entity.CashMovementRefundOut, res.CashMovement.Type)
	assert.Equal(t, "-2000", res.CashMovement.Amount.String())
	assert.Equal(t, res.Return.ID, res.CashMovement.ReferenceID)

	closed, err := f.shifts.Close(ctx, f.shiftID, d(98000))
	require.NoError(t, err)
	assert.Equal(t, "98000", closed.ExpectedCash.String())
	assert.True(t, closed.Difference.IsZero())
}

func TestCashRefund_WithoutShiftIsNotFatal(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(1)})
	_, err := f.shifts.Close(t.Context(), f.shiftID, d(100000))
	require.NoError(t, err)

	in := partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: sale.Items[0].ID, Quantity: d(1)})
	in.RefundMethod = entity.PaymentMethodCash
	res, err := f.engine.Create(t.Context(), in)
	require.NoError(t, err)
	assert.Nil(t, res.CashMovement)
}

func TestStoreScope_OtherStoreCannotRefund(t *testing.T) {
	f := newFixture(t)
	sale := f.sell(t, checkout.Line{VariantID: "cheap", Quantity: d(2)})
	ctx := t.Context()
	foreign := entity.Scope{StoreID: "s2", Role: entity.RoleCashier}

	in := partial(sale.Invoice.ID, entity.RoleCashier, true, returns.Line{InvoiceItemID: sale.Items[0].ID, Quantity: d(1)})
	in.Scope = foreign
	_, err := f.engine.Create(ctx, in)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.engine.RefundInvoice(ctx, returns.RefundInput{InvoiceID: sale.Invoice.ID, RefundMethod: entity.PaymentMethodCard, Restock: true, ActorRole: entity.RoleCashier, Scope: foreign})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.True(t, f.quantity(t, "cheap").Equal(d(8)), "nada reingresó")

	in.Scope = entity.Scope{StoreID: "s1", Role: entity.RoleCashier}
	_, err = f.engine.Create(ctx, in)
	require.NoError(t, err)
	_, err = f.engine.ListByInvoice(ctx, sale.Invoice.ID, foreign)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	list, err := f.engine.ListByInvoice(ctx, sale.Invoice.ID, entity.Scope{StoreID: "s2", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

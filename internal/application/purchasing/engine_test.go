package purchasing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/purchasing"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func dp(v int64) *decimal.Decimal {
	x := d(v)
	return &x
}

type fixture struct {
	engine *purchasing.Engine
	ledger *ledger.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	repos := st.Repos()
	ctx := t.Context()
	now := time.Now()
	require.NoError(t, repos.Stores.Create(ctx, &entity.Store{ID: "s1", Code: "S1", Name: "Centro", CreatedAt: now, UpdatedAt: now}))
	for _, id := range []string{"v1", "v2", "v3"} {
		require.NoError(t, repos.Variants.Create(ctx, &entity.Variant{ID: id, SKU: id, Name: id, BasePrice: d(100), Status: "active", CreatedAt: now, UpdatedAt: now}))
	}
	log := logger.Nop()
	return &fixture{
		engine: purchasing.NewEngine(st, repos.Purchases, nil, log),
		ledger: ledger.NewService(st, repos.Stock, repos.Movements, log),
	}
}

// order crea una orden de v1 x10 a 50 y v2 x5 a 20.
func (f *fixture) order(t *testing.T) *purchasing.OrderView {
	t.Helper()
	view, err := f.engine.CreateOrder(t.Context(), purchasing.CreateOrderInput{
		StoreID: "s1", SupplierID: "sup-1", ActorID: "u1",
		Lines: []purchasing.OrderLine{
			{VariantID: "v1", Quantity: d(10), UnitCost: d(50)},
			{VariantID: "v2", Quantity: d(5), UnitCost: d(20)},
		},
	})
	require.NoError(t, err)
	return view
}

func (f *fixture) quantity(t *testing.T, variantID string) decimal.Decimal {
	t.Helper()
	p, err := f.ledger.GetPosition(t.Context(), "s1", variantID)
	if errors.Is(err, domain.ErrPositionNotFound) {
		return decimal.Zero
	}
	require.NoError(t, err)
	return p.Quantity
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	view := f.order(t)

	assert.Equal(t, entity.PurchaseStatusDraft, view.Order.Status)
	assert.Equal(t, "600", view.Order.Total.String())
	require.Len(t, view.Items, 2)
	assert.True(t, view.Items[0].OrderedUnitCost.Equal(d(50)))

	_, err := f.engine.CreateOrder(t.Context(), purchasing.CreateOrderInput{StoreID: "s1", SupplierID: "sup-1",
		Lines: []purchasing.OrderLine{{VariantID: "v1", Quantity: d(1)}, {VariantID: "v1", Quantity: d(2)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.engine.CreateOrder(t.Context(), purchasing.CreateOrderInput{StoreID: "s1", SupplierID: "sup-1",
		Lines: []purchasing.OrderLine{{VariantID: "ghost", Quantity: d(1)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.engine.CreateOrder(t.Context(), purchasing.CreateOrderInput{StoreID: "nowhere", SupplierID: "sup-1",
		Lines: []purchasing.OrderLine{{VariantID: "v1", Quantity: d(1)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)
	view := f.order(t)
	ctx := t.Context()

	_, err := f.engine.Approve(ctx, view.Order.ID, entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrValidation), "no se aprueba un borrador")

	o, err := f.engine.Submit(ctx, view.Order.ID, entity.Scope{})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusSubmitted, o.Status)
	o, err = f.engine.Approve(ctx, view.Order.ID, entity.Scope{})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusApproved, o.Status)

	o, err = f.engine.Cancel(ctx, view.Order.ID, entity.Scope{})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusCancelled, o.Status)

	_, err = f.engine.Cancel(ctx, view.Order.ID, entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotCancellable))
	_, err = f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: view.Order.ID})
	assert.True(t, errors.Is(err, domain.ErrNotReceivable))

	_, err = f.engine.Submit(ctx, "missing", entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReceive_EverythingPending(t *testing.T) {
	f := newFixture(t)
	view := f.order(t)

	res, err := f.engine.Receive(t.Context(), purchasing.ReceiveInput{OrderID: view.Order.ID, ActorID: "u1"})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, entity.PurchaseStatusReceived, res.Order.Status)
	assert.Contains(t, res.Receipt.ReceiptNumber, "RCV-")
	assert.Equal(t, "600", res.Receipt.Total.String())
	assert.Len(t, res.Items, 2)
	assert.Len(t, res.Lots, 2)
	assert.True(t, f.quantity(t, "v1").Equal(d(10)))
	assert.True(t, f.quantity(t, "v2").Equal(d(5)))

	_, err = f.engine.Receive(t.Context(), purchasing.ReceiveInput{OrderID: view.Order.ID})
	assert.True(t, errors.Is(err, domain.ErrNotReceivable))
}

func TestReceive_PartialAndCostOverwrite(t *testing.T) {
	f := newFixture(t)
	view := f.order(t)
	ctx := t.Context()
	expiry := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)

	res, err := f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: view.Order.ID, ReferenceID: "GRN-1", Lines: []purchasing.ReceiveLine{
		{VariantID: "v1", Quantity: d(4), UnitCost: dp(60), LotNumber: "L-1", ExpiresAt: &expiry},
	}})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusDraft, res.Order.Status, "recepción parcial no cambia el estado")
	assert.Equal(t, "700", res.Order.Total.String(), "10×60 + 5×20")
	assert.Equal(t, "240", res.Items[0].LineTotal.String())
	assert.Equal(t, "L-1", res.Lots[0].LotNumber)

	got, err := f.engine.GetOrder(ctx, view.Order.ID, entity.Scope{})
	require.NoError(t, err)
	assert.True(t, got.Items[0].UnitCost.Equal(d(60)))
	assert.True(t, got.Items[0].OrderedUnitCost.Equal(d(50)))
	assert.True(t, got.Items[0].ReceivedQuantity.Equal(d(4)))
	assert.Len(t, got.Receipts, 1)

	pos, err := f.ledger.GetPosition(ctx, "s1", "v1")
	require.NoError(t, err)
	assert.True(t, pos.LastCost.Equal(d(60)))

	_, err = f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: view.Order.ID, Lines: []purchasing.ReceiveLine{{VariantID: "v1", Quantity: d(7)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation), "sobre-recepción")

	_, err = f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: view.Order.ID, Lines: []purchasing.ReceiveLine{{VariantID: "v3", Quantity: d(1)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation), "variante fuera de la orden")

	_, err = f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: view.Order.ID, Lines: []purchasing.ReceiveLine{{VariantID: "v1", Quantity: d(1), UnitCost: dp(-1)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	res, err = f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: view.Order.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusReceived, res.Order.Status)
	assert.True(t, f.quantity(t, "v1").Equal(d(10)))

	_, err = f.engine.Cancel(ctx, view.Order.ID, entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotCancellable))

	lots, err := f.engine.ListLots(ctx, "s1", "v1")
	require.NoError(t, err)
	assert.Len(t, lots, 2)

	rec, err := f.ledger.Reconcile(ctx, "s1", "v1")
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
}

func TestReceive_CancelAfterPartialFails(t *testing.T) {
	f := newFixture(t)
	view := f.order(t)

	_, err := f.engine.Receive(t.Context(), purchasing.ReceiveInput{OrderID: view.Order.ID, Lines: []purchasing.ReceiveLine{{VariantID: "v2", Quantity: d(1)}}})
	require.NoError(t, err)

	_, err = f.engine.Cancel(t.Context(), view.Order.ID, entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotCancellable))
}

func TestReceive_Idempotent(t *testing.T) {
	f := newFixture(t)
	view := f.order(t)
	ctx := t.Context()
	in := purchasing.ReceiveInput{OrderID: view.Order.ID, ReferenceID: "GRN-7", Lines: []purchasing.ReceiveLine{{VariantID: "v1", Quantity: d(3)}}}

	first, err := f.engine.Receive(ctx, in)
	require.NoError(t, err)
	second, err := f.engine.Receive(ctx, in)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Receipt.ID, second.Receipt.ID)
	assert.Len(t, second.Items, 1)
	assert.True(t, f.quantity(t, "v1").Equal(d(3)))

	movs, err := f.ledger.ListByReference(ctx, first.Receipt.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)

	other := f.order(t)
	_, err = f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: other.Order.ID, ReferenceID: "GRN-7"})
	assert.True(t, errors.Is(err, domain.ErrReferenceConflict))
}

func TestReceive_ConcurrentSameReference(t *testing.T) {
	f := newFixture(t)
	view := f.order(t)

	const calls = 5
	var wg sync.WaitGroup
	results := make([]*purchasing.ReceiveResult, calls)
	errs := make([]error, calls)
	for i := range calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.engine.Receive(context.Background(), purchasing.ReceiveInput{
				OrderID: view.Order.ID, ReferenceID: "GRN-9",
				Lines: []purchasing.ReceiveLine{{VariantID: "v1", Quantity: d(2)}},
			})
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := range calls {
		require.NoError(t, errs[i])
		if !results[i].Replayed {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
	assert.True(t, f.quantity(t, "v1").Equal(d(2)))
}

func TestStoreScope_OtherStoreRejected(t *testing.T) {
	f := newFixture(t)
	view := f.order(t)
	ctx := t.Context()
	foreign := entity.Scope{StoreID: "s2", Role: entity.RoleStockClerk}

	_, err := f.engine.Submit(ctx, view.Order.ID, foreign)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: view.Order.ID, ReferenceID: "GR-1", Scope: foreign})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.engine.Cancel(ctx, view.Order.ID, foreign)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.engine.GetOrder(ctx, view.Order.ID, foreign)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.True(t, f.quantity(t, "v1").IsZero())

	own := entity.Scope{StoreID: "s1", Role: entity.RoleStockClerk}
	res, err := f.engine.Receive(ctx, purchasing.ReceiveInput{OrderID: view.Order.ID, ReferenceID: "GR-1", Scope: own})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.True(t, f.quantity(t, "v1").Equal(d(10)))
}

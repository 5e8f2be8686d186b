package transfer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/application/transfer"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	engine *transfer.Engine
	ledger *ledger.Service
}

// newFixture crea las tiendas "from" y "to"; "from" tiene 10 de v1 y 4 de v2 a costo 70.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	repos := st.Repos()
	ctx := t.Context()
	now := time.Now()
	for _, id := range []string{"from", "to"} {
		require.NoError(t, repos.Stores.Create(ctx, &entity.Store{ID: id, Code: id, Name: id, CreatedAt: now, UpdatedAt: now}))
	}
	for _, id := range []string{"v1", "v2"} {
		require.NoError(t, repos.Variants.Create(ctx, &entity.Variant{ID: id, SKU: id, Name: id, BasePrice: d(100), Status: "active", CreatedAt: now, UpdatedAt: now}))
	}
	cost := d(70)
	require.NoError(t, st.Run(ctx, func(r ports.Repos) error {
		lg := ledger.New(r.Stock, r.Movements)
		if err := lg.Increment(ctx, ledger.Entry{StoreID: "from", VariantID: "v1", Quantity: d(10), MovementType: entity.MovementTypeReceive, ReferenceID: "seed", UnitCost: &cost}); err != nil {
			return err
		}
		return lg.Increment(ctx, ledger.Entry{StoreID: "from", VariantID: "v2", Quantity: d(4), MovementType: entity.MovementTypeReceive, ReferenceID: "seed", UnitCost: &cost})
	}))
	log := logger.Nop()
	return &fixture{
		engine: transfer.NewEngine(st, repos.Transfers, ports.NoopPublisher{}, log),
		ledger: ledger.NewService(st, repos.Stock, repos.Movements, log),
	}
}

func (f *fixture) position(t *testing.T, storeID, variantID string) (quantity, reserved decimal.Decimal) {
	t.Helper()
	p, err := f.ledger.GetPosition(t.Context(), storeID, variantID)
	if errors.Is(err, domain.ErrPositionNotFound) {
		return decimal.Zero, decimal.Zero
	}
	require.NoError(t, err)
	return p.Quantity, p.Reserved
}

func (f *fixture) create(t *testing.T, lines ...transfer.Line) *transfer.View {
	t.Helper()
	view, err := f.engine.Create(t.Context(), transfer.CreateInput{FromStoreID: "from", ToStoreID: "to", ActorID: "u1", Lines: lines})
	require.NoError(t, err)
	return view
}

func TestCreate_ReservesAtOrigin(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, transfer.Line{VariantID: "v1", Quantity: d(3)}, transfer.Line{VariantID: "v1", Quantity: d(2)})

	assert.Equal(t, entity.TransferStatusPending, view.Transfer.Status)
	require.Len(t, view.Items, 1, "variantes repetidas se fusionan")
	assert.True(t, view.Items[0].Quantity.Equal(d(5)))
	q, r := f.position(t, "from", "v1")
	assert.True(t, q.Equal(d(10)))
	assert.True(t, r.Equal(d(5)))
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, err := f.engine.Create(ctx, transfer.CreateInput{FromStoreID: "from", ToStoreID: "from", Lines: []transfer.Line{{VariantID: "v1", Quantity: d(1)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.engine.Create(ctx, transfer.CreateInput{FromStoreID: "from", ToStoreID: "to"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.engine.Create(ctx, transfer.CreateInput{FromStoreID: "from", ToStoreID: "mars", Lines: []transfer.Line{{VariantID: "v1", Quantity: d(1)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.engine.Create(ctx, transfer.CreateInput{FromStoreID: "from", ToStoreID: "to", Lines: []transfer.Line{
		{VariantID: "v1", Quantity: d(2)},
		{VariantID: "v2", Quantity: d(5)},
	}})
	require.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var le *domain.LineError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 1, le.Line)
	assert.Equal(t, "v2", le.VariantID)

	_, r := f.position(t, "from", "v1")
	assert.True(t, r.IsZero(), "todo o nada")
}

func TestDispatchAndPartialReceive_Conservation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	view := f.create(t, transfer.Line{VariantID: "v1", Quantity: d(6)})

	dispatched, err := f.engine.Dispatch(ctx, view.Transfer.ID, "u1", entity.Scope{})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusInTransit, dispatched.Transfer.Status)
	assert.NotNil(t, dispatched.Transfer.DispatchedAt)
	fq, fr := f.position(t, "from", "v1")
	assert.True(t, fq.Equal(d(4)))
	assert.True(t, fr.IsZero())

	part, err := f.engine.Receive(ctx, transfer.ReceiveInput{TransferID: view.Transfer.ID, Lines: []transfer.Line{{VariantID: "v1", Quantity: d(4)}}})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusInTransit, part.Transfer.Status)

	tq, _ := f.position(t, "to", "v1")
	inTransit := part.Items[0].Remaining()
	assert.True(t, tq.Equal(d(4)))
	assert.True(t, fq.Add(tq).Add(inTransit).Equal(d(10)), "origen + destino + en tránsito = inicial")

	dest, err := f.ledger.GetPosition(ctx, "to", "v1")
	require.NoError(t, err)
	assert.True(t, dest.LastCost.Equal(d(70)), "ingresa al último costo de origen")

	_, err = f.engine.Receive(ctx, transfer.ReceiveInput{TransferID: view.Transfer.ID, Lines: []transfer.Line{{VariantID: "v1", Quantity: d(3)}}})
	assert.True(t, errors.Is(err, domain.ErrValidation), "no se recibe más de lo pendiente")

	done, err := f.engine.Receive(ctx, transfer.ReceiveInput{TransferID: view.Transfer.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCompleted, done.Transfer.Status)
	assert.NotNil(t, done.Transfer.CompletedAt)
	tq, _ = f.position(t, "to", "v1")
	assert.True(t, tq.Equal(d(6)))

	movs, err := f.ledger.ListByReference(ctx, view.Transfer.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 3)
	for _, store := range []string{"from", "to"} {
		rec, err := f.ledger.Reconcile(ctx, store, "v1")
		require.NoError(t, err)
		assert.True(t, rec.Balanced, store)
	}
}

func TestStateGuards(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	view := f.create(t, transfer.Line{VariantID: "v2", Quantity: d(2)})

	_, err := f.engine.Receive(ctx, transfer.ReceiveInput{TransferID: view.Transfer.ID})
	assert.True(t, errors.Is(err, domain.ErrNotReceivable))

	_, err = f.engine.Dispatch(ctx, view.Transfer.ID, "u1", entity.Scope{})
	require.NoError(t, err)
	_, err = f.engine.Dispatch(ctx, view.Transfer.ID, "u1", entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotDispatchable))
	_, err = f.engine.Cancel(ctx, view.Transfer.ID, entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotCancellable))

	_, err = f.engine.Dispatch(ctx, "missing", "u1", entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCancel_ReleasesReservation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	view := f.create(t, transfer.Line{VariantID: "v1", Quantity: d(10)})

	cancelled, err := f.engine.Cancel(ctx, view.Transfer.ID, entity.Scope{})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, cancelled.Transfer.Status)
	q, r := f.position(t, "from", "v1")
	assert.True(t, q.Equal(d(10)))
	assert.True(t, r.IsZero())

	_, err = f.engine.Dispatch(ctx, view.Transfer.ID, "u1", entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotDispatchable))
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	view := f.create(t, transfer.Line{VariantID: "v1", Quantity: d(1)})

	got, err := f.engine.Get(ctx, view.Transfer.ID, entity.Scope{})
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	for _, store := range []string{"from", "to"} {
		list, err := f.engine.List(ctx, store, 10, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1, store)
	}

	_, err = f.engine.Get(ctx, "missing", entity.Scope{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.engine.List(ctx, "", 10, 0)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestStoreScope_OriginDispatchesDestinationReceives(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	view := f.create(t, transfer.Line{VariantID: "v1", Quantity: d(2)})
	origin := entity.Scope{StoreID: "from", Role: entity.RoleStockClerk}
	dest := entity.Scope{StoreID: "to", Role: entity.RoleStockClerk}
	outsider := entity.Scope{StoreID: "otra", Role: entity.RoleStockClerk}

	_, err := f.engine.Dispatch(ctx, view.Transfer.ID, "u2", dest)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.engine.Cancel(ctx, view.Transfer.ID, dest)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.engine.Get(ctx, view.Transfer.ID, outsider)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.engine.Get(ctx, view.Transfer.ID, dest)
	assert.NoError(t, err)

	_, err = f.engine.Dispatch(ctx, view.Transfer.ID, "u1", origin)
	require.NoError(t, err)
	_, err = f.engine.Receive(ctx, transfer.ReceiveInput{TransferID: view.Transfer.ID, Scope: origin})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	tq, _ := f.position(t, "to", "v1")
	assert.True(t, tq.IsZero())

	done, err := f.engine.Receive(ctx, transfer.ReceiveInput{TransferID: view.Transfer.ID, Scope: dest})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCompleted, done.Transfer.Status)
}

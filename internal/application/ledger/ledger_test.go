package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.NewStore()
	now := time.Now()
	require.NoError(t, st.Repos().Variants.Create(t.Context(), &entity.Variant{ID: "v1", SKU: "V1", Name: "Gorra", BasePrice: d(50), Status: "active", CreatedAt: now, UpdatedAt: now}))
	return st
}

func inTx(t *testing.T, st *memory.Store, fn func(lg *ledger.Ledger) error) error {
	t.Helper()
	return st.Run(t.Context(), func(r ports.Repos) error {
		return fn(ledger.New(r.Stock, r.Movements))
	})
}

func entry(qty int64, movementType string) ledger.Entry {
	return ledger.Entry{StoreID: "s1", VariantID: "v1", Quantity: d(qty), MovementType: movementType, ReferenceID: "ref-1", ActorID: "u1"}
}

func TestIncrement_CreatesPosition(t *testing.T) {
	st := newStore(t)
	cost := d(30)
	e := entry(5, entity.MovementTypeReceive)
	e.UnitCost = &cost

	require.NoError(t, inTx(t, st, func(lg *ledger.Ledger) error { return lg.Increment(t.Context(), e) }))

	p, err := st.Repos().Stock.Get(t.Context(), "s1", "v1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Quantity.Equal(d(5)))
	assert.True(t, p.LastCost.Equal(d(30)))

	movs, err := st.Repos().Movements.ListByReference(t.Context(), "ref-1")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.True(t, movs[0].Change.Equal(d(5)))
	assert.Equal(t, entity.MovementTypeReceive, movs[0].MovementType)
}

func TestDecrement_MissingPosition(t *testing.T) {
	st := newStore(t)

	err := inTx(t, st, func(lg *ledger.Ledger) error { return lg.Decrement(t.Context(), entry(1, entity.MovementTypeSale)) })
	assert.True(t, errors.Is(err, domain.ErrPositionNotFound))
}

func TestDecrement_RespectsReserved(t *testing.T) {
	st := newStore(t)
	require.NoError(t, inTx(t, st, func(lg *ledger.Ledger) error {
		if err := lg.Increment(t.Context(), entry(4, entity.MovementTypeReceive)); err != nil {
			return err
		}
		return lg.Reserve(t.Context(), "s1", "v1", d(3))
	}))

	err := inTx(t, st, func(lg *ledger.Ledger) error { return lg.Decrement(t.Context(), entry(2, entity.MovementTypeSale)) })
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	require.NoError(t, inTx(t, st, func(lg *ledger.Ledger) error { return lg.Decrement(t.Context(), entry(1, entity.MovementTypeSale)) }))
	p, err := st.Repos().Stock.Get(t.Context(), "s1", "v1")
	require.NoError(t, err)
	assert.True(t, p.Quantity.Equal(d(3)))
	assert.True(t, p.Reserved.Equal(d(3)))
}

func TestPrimitives_Validation(t *testing.T) {
	st := newStore(t)

	err := inTx(t, st, func(lg *ledger.Ledger) error { return lg.Increment(t.Context(), entry(0, entity.MovementTypeReceive)) })
	assert.True(t, errors.Is(err, domain.ErrValidation))

	err = inTx(t, st, func(lg *ledger.Ledger) error { return lg.Increment(t.Context(), entry(1, "gift")) })
	assert.True(t, errors.Is(err, domain.ErrValidation))

	err = inTx(t, st, func(lg *ledger.Ledger) error {
		if err := lg.Increment(t.Context(), entry(2, entity.MovementTypeReceive)); err != nil {
			return err
		}
		return lg.Release(t.Context(), "s1", "v1", d(1))
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	p, err := st.Repos().Stock.Get(t.Context(), "s1", "v1")
	require.NoError(t, err)
	assert.Nil(t, p, "la transacción fallida no deja la posición creada")
}

func TestReserve_MissingPosition(t *testing.T) {
	st := newStore(t)

	err := inTx(t, st, func(lg *ledger.Ledger) error { return lg.Reserve(t.Context(), "s1", "v1", d(1)) })
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestCheckAvailable(t *testing.T) {
	st := newStore(t)

	err := inTx(t, st, func(lg *ledger.Ledger) error { return lg.CheckAvailable(t.Context(), "s1", "v1", d(1)) })
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "posición inexistente cuenta como 0")

	require.NoError(t, inTx(t, st, func(lg *ledger.Ledger) error {
		if err := lg.Increment(t.Context(), entry(1, entity.MovementTypeReceive)); err != nil {
			return err
		}
		return lg.CheckAvailable(t.Context(), "s1", "v1", d(1))
	}))
}

func TestLockAll_IgnoresMissing(t *testing.T) {
	st := newStore(t)
	keys := []entity.PositionKey{{StoreID: "s2", VariantID: "v1"}, {StoreID: "s1", VariantID: "v1"}, {StoreID: "s1", VariantID: "v1"}}

	assert.NoError(t, inTx(t, st, func(lg *ledger.Ledger) error { return lg.LockAll(t.Context(), keys) }))
}

// orderedStock registra el orden en que se tocan las filas.
type orderedStock struct {
	repository.StockRepository
	ensured []entity.PositionKey
}

func (o *orderedStock) Ensure(ctx context.Context, storeID, variantID string) error {
	o.ensured = append(o.ensured, entity.PositionKey{StoreID: storeID, VariantID: variantID})
	return o.StockRepository.Ensure(ctx, storeID, variantID)
}

func TestEnsureAll_CreatesInSortedOrder(t *testing.T) {
	st := newStore(t)
	keys := []entity.PositionKey{
		{StoreID: "s3", VariantID: "v1"},
		{StoreID: "s1", VariantID: "v1"},
		{StoreID: "s2", VariantID: "v1"},
		{StoreID: "s1", VariantID: "v1"},
	}

	var rec *orderedStock
	require.NoError(t, st.Run(t.Context(), func(r ports.Repos) error {
		rec = &orderedStock{StockRepository: r.Stock}
		lg := ledger.New(rec, r.Movements)
		if err := lg.EnsureAll(t.Context(), keys); err != nil {
			return err
		}
		// la segunda pasada no vuelve a insertar
		return lg.EnsureAll(t.Context(), keys)
	}))

	assert.Equal(t, []entity.PositionKey{
		{StoreID: "s1", VariantID: "v1"},
		{StoreID: "s2", VariantID: "v1"},
		{StoreID: "s3", VariantID: "v1"},
	}, rec.ensured)

	for _, store := range []string{"s1", "s2", "s3"} {
		p, err := st.Repos().Stock.Get(t.Context(), store, "v1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, p.Quantity.IsZero())
	}
}

func TestService_CheckAvailable(t *testing.T) {
	st := newStore(t)
	repos := st.Repos()
	svc := ledger.NewService(st, repos.Stock, repos.Movements, logger.Nop())

	err := svc.CheckAvailable(t.Context(), "s1", "v1", d(0))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	err = svc.CheckAvailable(t.Context(), "s1", "v1", d(1))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	require.NoError(t, inTx(t, st, func(lg *ledger.Ledger) error {
		if err := lg.Increment(t.Context(), entry(3, entity.MovementTypeReceive)); err != nil {
			return err
		}
		return lg.Reserve(t.Context(), "s1", "v1", d(2))
	}))

	assert.NoError(t, svc.CheckAvailable(t.Context(), "s1", "v1", d(1)))
	err = svc.CheckAvailable(t.Context(), "s1", "v1", d(2))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "lo reservado no cuenta como disponible")
}

func TestService_Reconcile(t *testing.T) {
	st := newStore(t)
	repos := st.Repos()
	svc := ledger.NewService(st, repos.Stock, repos.Movements, logger.Nop())

	_, err := svc.Reconcile(t.Context(), "s1", "v1")
	assert.True(t, errors.Is(err, domain.ErrPositionNotFound))

	pos, err := svc.EnsurePosition(t.Context(), "s1", "v1")
	require.NoError(t, err)
	assert.True(t, pos.Quantity.IsZero())

	require.NoError(t, inTx(t, st, func(lg *ledger.Ledger) error {
		if err := lg.Increment(t.Context(), entry(7, entity.MovementTypeReceive)); err != nil {
			return err
		}
		return lg.Decrement(t.Context(), entry(2, entity.MovementTypeSale))
	}))

	rec, err := svc.Reconcile(t.Context(), "s1", "v1")
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
	assert.True(t, rec.Quantity.Equal(d(5)))
	assert.True(t, rec.MovementsTotal.Equal(d(5)))

	movs, err := svc.ListMovements(t.Context(), "s1", "v1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	_, err = svc.ListByReference(t.Context(), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.EnsurePosition(t.Context(), "s1", "nope")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

type recordingPublisher struct {
	got []*entity.StockMovement
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, movements []*entity.StockMovement) error {
	p.got = append(p.got, movements...)
	return p.err
}

func TestPublish_IgnoresErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker caído")}
	movs := []*entity.StockMovement{{ID: "m1"}}

	ledger.Publish(t.Context(), pub, logger.Nop(), movs)
	ledger.Publish(t.Context(), pub, logger.Nop(), nil)
	assert.Len(t, pub.got, 1)
}

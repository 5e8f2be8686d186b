package shift_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/application/shift"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newService(t *testing.T) (*shift.Service, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	now := time.Now()
	require.NoError(t, st.Repos().Stores.Create(t.Context(), &entity.Store{ID: "s1", Code: "S1", Name: "Centro", CreatedAt: now, UpdatedAt: now}))
	return shift.NewService(st, st.Repos().Shifts, logger.Nop()), st
}

func TestOpen(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()

	ok, err := svc.HasOpenShift(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = svc.Active(ctx, "s1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	sh, err := svc.Open(ctx, shift.OpenInput{StoreID: "s1", CashierID: "c1", OpeningCash: d(5000)})
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftStatusOpen, sh.Status)

	_, err = svc.Open(ctx, shift.OpenInput{StoreID: "s1", CashierID: "c2", OpeningCash: d(0)})
	assert.True(t, errors.Is(err, domain.ErrValidation), "un turno abierto por tienda")

	_, err = svc.Open(ctx, shift.OpenInput{StoreID: "nowhere", CashierID: "c1", OpeningCash: d(0)})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = svc.Open(ctx, shift.OpenInput{StoreID: "s1", CashierID: "c1", OpeningCash: d(-1)})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	active, err := svc.Active(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sh.ID, active.ID)
}

func TestClose_ComputesDifference(t *testing.T) {
	svc, st := newService(t)
	ctx := t.Context()
	sh, err := svc.Open(ctx, shift.OpenInput{StoreID: "s1", CashierID: "c1", OpeningCash: d(5000)})
	require.NoError(t, err)

	require.NoError(t, st.Run(ctx, func(r ports.Repos) error {
		cm, err := shift.RecordCashMovement(ctx, r.Shifts, "s1", shift.CashMovementInput{
			Type: entity.CashMovementRefundOut, Amount: d(-1200), ReferenceID: "ret-1", ActorID: "c1",
		})
		if err != nil {
			return err
		}
		assert.NotNil(t, cm)
		assert.False(t, cm.CreatedAt.IsZero())
		return nil
	}))

	closed, err := svc.Close(ctx, sh.ID, d(3700))
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftStatusClosed, closed.Status)
	assert.Equal(t, "3800", closed.ExpectedCash.String())
	assert.Equal(t, "-100", closed.Difference.String())
	assert.NotNil(t, closed.ClosedAt)

	movs, err := svc.CashMovements(ctx, sh.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)

	_, err = svc.Close(ctx, sh.ID, d(0))
	assert.True(t, errors.Is(err, domain.ErrValidation), "ya cerrado")
	_, err = svc.Close(ctx, "missing", d(0))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = svc.Close(ctx, sh.ID, d(-5))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.Open(ctx, shift.OpenInput{StoreID: "s1", CashierID: "c2", OpeningCash: d(0)})
	assert.NoError(t, err, "tras cerrar se puede abrir otro")
}

func TestRecordCashMovement_NoShift(t *testing.T) {
	_, st := newService(t)

	cm, err := shift.RecordCashMovement(t.Context(), st.Repos().Shifts, "s1", shift.CashMovementInput{Type: entity.CashMovementRefundOut, Amount: d(-1)})
	require.NoError(t, err)
	assert.Nil(t, cm)
}

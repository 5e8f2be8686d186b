package inventory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func position(qty, reserved int64) *entity.StockPosition {
	return &entity.StockPosition{StoreID: "s", VariantID: "v", Quantity: d(qty), Reserved: d(reserved)}
}

func TestDecrease(t *testing.T) {
	p := position(10, 4)

	require.NoError(t, Decrease(p, d(6)))
	assert.True(t, p.Quantity.Equal(d(4)))

	err := Decrease(p, d(1))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "lo apartado no se puede vender")
	assert.True(t, p.Quantity.Equal(d(4)))

	assert.True(t, errors.Is(Decrease(p, d(0)), domain.ErrValidation))
}

func TestReserveRelease(t *testing.T) {
	p := position(5, 0)

	require.NoError(t, Reserve(p, d(5)))
	assert.True(t, p.Available().IsZero())
	assert.True(t, errors.Is(Reserve(p, d(1)), domain.ErrInsufficientStock))

	require.NoError(t, Release(p, d(2)))
	assert.True(t, p.Reserved.Equal(d(3)))
	assert.True(t, errors.Is(Release(p, d(4)), domain.ErrValidation))
	assert.True(t, errors.Is(Release(p, decimal.NewFromInt(-1)), domain.ErrValidation))
}

func TestIncrease_Cost(t *testing.T) {
	p := position(10, 0)
	p.AvgCost = d(100)
	p.LastCost = d(100)

	cost := d(200)
	require.NoError(t, Increase(p, d(10), &cost))
	assert.True(t, p.Quantity.Equal(d(20)))
	assert.True(t, p.LastCost.Equal(d(200)))
	assert.Equal(t, "150", p.AvgCost.String())

	require.NoError(t, Increase(p, d(1), nil))
	assert.True(t, p.LastCost.Equal(d(200)), "sin costo se conserva el último")

	neg := d(-1)
	assert.True(t, errors.Is(Increase(p, d(1), &neg), domain.ErrValidation))
}

func TestCheckInvariant(t *testing.T) {
	assert.NoError(t, CheckInvariant(position(3, 3)))
	assert.Error(t, CheckInvariant(position(2, 3)))
	assert.Error(t, CheckInvariant(position(-1, 0)))
}

func TestCostCalculator(t *testing.T) {
	assert.Equal(t, "12.5", CostCalculator(d(0), d(0), d(4), decimal.RequireFromString("12.5")).String())
	assert.Equal(t, "110", CostCalculator(d(9), d(100), d(1), d(200)).String())
	assert.Equal(t, "200", CostCalculator(d(-3), d(100), d(2), d(200)).String(), "stock negativo cuenta como cero")
	assert.True(t, CostCalculator(d(0), d(0), d(0), d(5)).IsZero())
}

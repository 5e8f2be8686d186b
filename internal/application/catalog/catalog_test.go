package catalog_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/catalog"
	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/memory"
)

func TestVariantUseCase(t *testing.T) {
	uc := catalog.NewVariantUseCase(memory.NewStore().Repos().Variants)
	ctx := t.Context()

	v, err := uc.Create(ctx, dto.CreateVariantRequest{SKU: " CAM-M ", Name: "Camisa M", BasePrice: decimal.NewFromInt(45000)})
	require.NoError(t, err)
	assert.Equal(t, "CAM-M", v.SKU)

	got, err := uc.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camisa M", got.Name)

	_, err = uc.Create(ctx, dto.CreateVariantRequest{SKU: "CAM-M", Name: "Otra"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	_, err = uc.Create(ctx, dto.CreateVariantRequest{SKU: "X", Name: "X", BasePrice: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = uc.Create(ctx, dto.CreateVariantRequest{Name: "Sin sku"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = uc.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	list, err := uc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestStoreUseCase(t *testing.T) {
	uc := catalog.NewStoreUseCase(memory.NewStore().Repos().Stores)
	ctx := t.Context()

	s, err := uc.Create(ctx, dto.CreateStoreRequest{Code: "NORTE", Name: "Sucursal Norte"})
	require.NoError(t, err)
	got, err := uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "NORTE", got.Code)

	_, err = uc.Create(ctx, dto.CreateStoreRequest{Code: "  ", Name: "Vacía"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	list, err := uc.List(ctx, 5, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 5, list.Page.Limit)
}

package pricing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/pricing"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// mapCache caché en memoria que cuenta lecturas e invalidaciones.
type mapCache struct {
	mu          sync.Mutex
	data        map[string][]*entity.VariantPrice
	hits        int
	invalidated int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]*entity.VariantPrice)} }

func (c *mapCache) Get(_ context.Context, storeID, variantID string) ([]*entity.VariantPrice, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.data[storeID+":"+variantID]
	if ok {
		c.hits++
	}
	return w, ok, nil
}

func (c *mapCache) Set(_ context.Context, storeID, variantID string, windows []*entity.VariantPrice, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[storeID+":"+variantID] = windows
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, storeID, variantID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, storeID+":"+variantID)
	c.invalidated++
	return nil
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newResolver(t *testing.T) (*pricing.Resolver, *mapCache) {
	t.Helper()
	st := memory.NewStore()
	repos := st.Repos()
	require.NoError(t, repos.Variants.Create(t.Context(), &entity.Variant{ID: "v1", SKU: "V1", Name: "Jean", BasePrice: d(1000), Status: "active", CreatedAt: t0, UpdatedAt: t0}))
	cache := newMapCache()
	return pricing.NewResolver(st, repos.Prices, repos.Variants, cache, time.Minute, logger.Nop()), cache
}

func open(t *testing.T, r *pricing.Resolver, price int64, start time.Time) *entity.VariantPrice {
	t.Helper()
	w, err := r.OpenWindow(t.Context(), pricing.OpenWindowInput{StoreID: "s1", VariantID: "v1", Price: d(price), StartAt: start, ActorID: "m1"})
	require.NoError(t, err)
	return w
}

func TestResolve_FallsBackToBasePrice(t *testing.T) {
	r, _ := newResolver(t)

	price, err := r.Resolve(t.Context(), "s1", "v1", t0)
	require.NoError(t, err)
	assert.Equal(t, "1000", price.String())

	_, found, err := r.EffectivePrice(t.Context(), "s1", "v1", t0)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = r.Resolve(t.Context(), "s1", "ghost", t0)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestOpenWindow_HalfOpenIntervals(t *testing.T) {
	r, _ := newResolver(t)
	first := open(t, r, 900, t0)
	second := open(t, r, 700, t0.Add(24*time.Hour))

	windows, err := r.ListWindows(t.Context(), "s1", "v1")
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, first.ID, windows[0].ID)
	require.NotNil(t, windows[0].EndAt)
	assert.True(t, windows[0].EndAt.Equal(second.StartAt), "la ventana anterior termina donde empieza la nueva")
	assert.Nil(t, windows[1].EndAt)

	cases := []struct {
		at   time.Time
		want string
	}{
		{t0.Add(-time.Second), "1000"},
		{t0, "900"},
		{t0.Add(24*time.Hour - time.Nanosecond), "900"},
		{t0.Add(24 * time.Hour), "700"},
		{t0.Add(365 * 24 * time.Hour), "700"},
	}
	for _, tc := range cases {
		price, err := r.Resolve(t.Context(), "s1", "v1", tc.at)
		require.NoError(t, err)
		assert.Equal(t, tc.want, price.String(), "at=%s", tc.at)
	}
}

func TestOpenWindow_RejectsOverlap(t *testing.T) {
	r, _ := newResolver(t)
	open(t, r, 900, t0)

	_, err := r.OpenWindow(t.Context(), pricing.OpenWindowInput{StoreID: "s1", VariantID: "v1", Price: d(800), StartAt: t0})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = r.OpenWindow(t.Context(), pricing.OpenWindowInput{StoreID: "s1", VariantID: "v1", Price: d(800), StartAt: t0.Add(-time.Hour)})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = r.CloseWindow(t.Context(), "s1", "v1", t0.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = r.OpenWindow(t.Context(), pricing.OpenWindowInput{StoreID: "s1", VariantID: "v1", Price: d(800), StartAt: t0.Add(time.Hour)})
	assert.True(t, errors.Is(err, domain.ErrValidation), "no puede solaparse con una ventana cerrada")

	_, err = r.OpenWindow(t.Context(), pricing.OpenWindowInput{StoreID: "s1", VariantID: "v1", Price: d(-1), StartAt: t0.Add(3 * time.Hour)})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = r.OpenWindow(t.Context(), pricing.OpenWindowInput{StoreID: "s1", VariantID: "ghost", Price: d(1), StartAt: t0})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCloseWindow(t *testing.T) {
	r, _ := newResolver(t)

	_, err := r.CloseWindow(t.Context(), "s1", "v1", t0)
	assert.True(t, errors.Is(err, domain.ErrValidation), "sin ventana abierta")

	open(t, r, 900, t0)
	_, err = r.CloseWindow(t.Context(), "s1", "v1", t0)
	assert.True(t, errors.Is(err, domain.ErrValidation), "el cierre debe ser posterior al inicio")

	closed, err := r.CloseWindow(t.Context(), "s1", "v1", t0.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, closed.EndAt)

	price, err := r.Resolve(t.Context(), "s1", "v1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "1000", price.String())
}

func TestResolver_CacheInvalidation(t *testing.T) {
	r, cache := newResolver(t)
	open(t, r, 900, t0)

	_, err := r.Resolve(t.Context(), "s1", "v1", t0)
	require.NoError(t, err)
	price, err := r.Resolve(t.Context(), "s1", "v1", t0)
	require.NoError(t, err)
	assert.Equal(t, "900", price.String())
	assert.Equal(t, 1, cache.hits)

	open(t, r, 500, t0.Add(time.Hour))
	assert.Equal(t, 2, cache.invalidated)

	price, err = r.Resolve(t.Context(), "s1", "v1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "500", price.String(), "tras invalidar se leen las ventanas nuevas")
}
